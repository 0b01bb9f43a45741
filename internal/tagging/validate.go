package tagging

import (
	"errors"
	"fmt"
	"strings"

	"github.com/luxnlp/lb-ner-corpus/internal/models"
)

var (
	ErrMissingID    = errors.New("missing id")
	ErrMissingLabel = errors.New("missing label")
)

// Validate checks a tagged record before it leaves the local stores.
func Validate(e models.TaggedEntity) error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(e.Label) == "" {
		return ErrMissingLabel
	}
	if !Tag(e.NERTag).Valid() {
		return fmt.Errorf("unknown ner tag %q", e.NERTag)
	}
	return nil
}
