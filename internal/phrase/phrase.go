package phrase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Language identifies the language of a phrase. Code is unique in the store.
type Language struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// IsZero reports whether no language information is present
func (l Language) IsZero() bool {
	return strings.TrimSpace(l.Code) == ""
}

// UnmarshalJSON accepts the {"name", "code"} object, a bare language name,
// or anything else, which is dropped. Language is optional in a model answer
// and its shape must not fail the phrase.
func (l *Language) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*l = Language{Name: name}
		return nil
	}

	type plain Language
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*l = Language{}
		return nil
	}
	*l = Language(p)
	return nil
}

// Phrase is a translated phrase as returned by the model and as stored.
// Original is unique in the store.
type Phrase struct {
	ID            int64    `json:"-"`
	Original      string   `json:"original" validate:"required,notblank"`
	Pronunciation string   `json:"pinyin"`
	Translation   string   `json:"translation" validate:"required,notblank"`
	Language      Language `json:"language"`
}

func (p Phrase) String() string {
	if p.Pronunciation == "" {
		return fmt.Sprintf("%s = %s", p.Original, p.Translation)
	}
	return fmt.Sprintf("%s [%s] = %s", p.Original, p.Pronunciation, p.Translation)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// Trimmed returns p with surrounding whitespace removed from every text
// field and the language code lowercased
func (p Phrase) Trimmed() Phrase {
	p.Original = strings.TrimSpace(p.Original)
	p.Pronunciation = strings.TrimSpace(p.Pronunciation)
	p.Translation = strings.TrimSpace(p.Translation)
	p.Language.Code = strings.ToLower(strings.TrimSpace(p.Language.Code))
	p.Language.Name = strings.TrimSpace(p.Language.Name)
	return p
}

// Validate checks that the required fields are present
func (p Phrase) Validate() error {
	if err := validate.Struct(p); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return fmt.Errorf("missing required fields: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// SettingName names a persisted setting
type SettingName string

const (
	// SettingModel holds the preferred model name
	SettingModel SettingName = "llm_model"
)

func (s SettingName) String() string {
	return string(s)
}
