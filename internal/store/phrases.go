package store

import (
	"context"
	"fmt"

	"codeberg.org/snonux/hanzi/internal/phrase"
)

const upsertPhraseSQL = `
INSERT INTO phrases (language_id, original, pronunciation, translation)
VALUES (?, ?, ?, ?)
ON CONFLICT (original) DO UPDATE SET
    language_id   = excluded.language_id,
    pronunciation = excluded.pronunciation,
    translation   = excluded.translation`

// instr keeps the match case sensitive and treats % and _ literally
const searchPhrasesSQL = `
SELECT p.id, p.original, p.pronunciation, p.translation, l.id, l.name, l.code
FROM phrases p
JOIN languages l ON l.id = p.language_id
WHERE instr(p.original, ?) > 0
   OR instr(p.translation, ?) > 0
   OR instr(p.pronunciation, ?) > 0
ORDER BY p.id`

// SavePhrase inserts p, or overwrites pronunciation, translation and language
// of the phrase with the same original text. It returns the number of
// affected rows.
func (s *Store) SavePhrase(ctx context.Context, p phrase.Phrase) (int64, error) {
	p = p.Trimmed()
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	lang := p.Language
	if lang.IsZero() {
		lang = s.defaultLanguage
	}

	db, err := s.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, executionError("begin transaction", err)
	}
	defer tx.Rollback()

	langID, err := s.resolveLanguage(ctx, tx, lang.Code, lang.Name)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, upsertPhraseSQL, langID, p.Original, p.Pronunciation, p.Translation)
	if err != nil {
		s.logger.Error("Failed to upsert phrase", "original", p.Original, "error", err)
		return 0, executionError("upsert phrase", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, executionError("upsert phrase", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, executionError("commit", err)
	}

	s.logger.Debug("Saved phrase", "original", p.Original, "language", lang.Code, "affected", affected)
	return affected, nil
}

// SearchPhrases returns every phrase whose original, translation or
// pronunciation contains term. The match is case sensitive; an empty term
// matches all phrases. No match yields an empty slice and no error.
func (s *Store) SearchPhrases(ctx context.Context, term string) ([]phrase.Phrase, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, searchPhrasesSQL, term, term, term)
	if err != nil {
		s.logger.Error("Failed to load phrases", "term", term, "error", err)
		return nil, executionError("search phrases", err)
	}
	defer rows.Close()

	phrases := []phrase.Phrase{}
	for rows.Next() {
		var p phrase.Phrase
		if err := rows.Scan(&p.ID, &p.Original, &p.Pronunciation, &p.Translation,
			&p.Language.ID, &p.Language.Name, &p.Language.Code); err != nil {
			return nil, executionError("scan phrase", err)
		}
		phrases = append(phrases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, executionError("search phrases", err)
	}

	return phrases, nil
}
