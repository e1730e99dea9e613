package reply

import (
	"errors"
	"testing"

	"golang.org/x/text/language"
)

func TestDefaultCatalogComplete(t *testing.T) {
	c := DefaultCatalog()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	// Every key must resolve to a non-empty text for every supported language.
	for _, lang := range c.Languages() {
		for _, key := range allKeys {
			msg, err := c.text(lang, key)
			if err != nil {
				t.Errorf("text(%s, %s) error: %v", lang, key, err)
				continue
			}
			if msg == "" {
				t.Errorf("text(%s, %s) is empty", lang, key)
			}
		}
	}
}

func TestValidateDetectsMissingTemplate(t *testing.T) {
	c := DefaultCatalog()
	delete(c.messages[keySavings], language.BrazilianPortuguese)

	err := c.Validate()
	if !errors.Is(err, ErrTemplateMissing) {
		t.Fatalf("Validate() error = %v, want ErrTemplateMissing", err)
	}
}

func TestValidateDetectsEmptyTemplate(t *testing.T) {
	c := DefaultCatalog()
	c.messages[keyHelp][language.English] = ""

	if err := c.Validate(); !errors.Is(err, ErrTemplateMissing) {
		t.Fatalf("Validate() error = %v, want ErrTemplateMissing", err)
	}
}

func TestTextUnknownLanguage(t *testing.T) {
	c := DefaultCatalog()
	if _, err := c.text(language.French, keyHelp); !errors.Is(err, ErrTemplateMissing) {
		t.Fatalf("text(fr) error = %v, want ErrTemplateMissing", err)
	}
}
