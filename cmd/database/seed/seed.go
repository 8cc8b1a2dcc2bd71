// Package seed loads ingredient and tag reference data into the database.
package seed

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/logging"
	"github.com/Notemat/foodgram/internal/utils"
)

type (
	// IngredientCreator inserts an ingredient unless the (name, unit) pair exists.
	IngredientCreator interface {
		FirstOrCreate(ctx context.Context, name, unit string) (*entities.Ingredient, bool, error)
	}

	IngredientRow struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	// TagCreator inserts a tag unless its slug exists.
	TagCreator interface {
		FirstOrCreate(ctx context.Context, name, slug string) (*entities.Tag, bool, error)
	}

	TagRow struct {
		Name string `json:"name" validate:"required,max=32"`
		Slug string `json:"slug" validate:"required,max=32,slug"`
	}

	Result struct {
		Created  int
		Existing int
	}
)

var ErrUnknownFormat = errors.New("seed file must be .csv or .json")

// ImportIngredients reads path (format picked by extension) and creates each
// missing ingredient. Re-running the import is a no-op.
func ImportIngredients(ctx context.Context, repo IngredientCreator, path string) (Result, error) {
	var rows []IngredientRow
	if err := readFile(path, func(r io.Reader, format string) (err error) {
		rows, err = ReadIngredients(r, format)
		return err
	}); err != nil {
		return Result{}, err
	}

	var res Result
	for _, row := range rows {
		_, created, err := repo.FirstOrCreate(ctx, row.Name, row.MeasurementUnit)
		if err != nil {
			return res, fmt.Errorf("import %q: %w", row.Name, err)
		}
		if created {
			res.Created++
		} else {
			res.Existing++
		}
	}

	logging.Info().
		Str("file", path).
		Int("created", res.Created).
		Int("existing", res.Existing).
		Msg("ingredients imported")
	return res, nil
}

// ImportTags reads path and creates each missing tag. Every row is
// validated before anything is written, so a bad slug leaves the table as it was.
func ImportTags(ctx context.Context, repo TagCreator, path string) (Result, error) {
	var rows []TagRow
	if err := readFile(path, func(r io.Reader, format string) (err error) {
		rows, err = ReadTags(r, format)
		return err
	}); err != nil {
		return Result{}, err
	}

	for i, row := range rows {
		if err := utils.ValidateStruct(row); err != nil {
			return Result{}, fmt.Errorf("tag %d (%q): %w", i+1, row.Name, err)
		}
	}

	var res Result
	for _, row := range rows {
		_, created, err := repo.FirstOrCreate(ctx, row.Name, row.Slug)
		if err != nil {
			return res, fmt.Errorf("import %q: %w", row.Slug, err)
		}
		if created {
			res.Created++
		} else {
			res.Existing++
		}
	}

	logging.Info().
		Str("file", path).
		Int("created", res.Created).
		Int("existing", res.Existing).
		Msg("tags imported")
	return res, nil
}

func readFile(path string, read func(r io.Reader, format string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := read(f, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func ReadIngredients(r io.Reader, format string) ([]IngredientRow, error) {
	var rows []IngredientRow
	switch format {
	case "csv":
		records, err := csv.NewReader(r).ReadAll()
		if err != nil {
			return nil, err
		}
		for i, rec := range records {
			if len(rec) < 2 {
				return nil, fmt.Errorf("line %d: want name,measurement_unit", i+1)
			}
			// optional header row
			if i == 0 && rec[0] == "name" && rec[1] == "measurement_unit" {
				continue
			}
			rows = append(rows, IngredientRow{Name: rec[0], MeasurementUnit: rec[1]})
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&rows); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownFormat
	}

	out := rows[:0]
	for _, row := range rows {
		row.Name = strings.TrimSpace(row.Name)
		row.MeasurementUnit = strings.TrimSpace(row.MeasurementUnit)
		if row.Name == "" || row.MeasurementUnit == "" {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func ReadTags(r io.Reader, format string) ([]TagRow, error) {
	var rows []TagRow
	switch format {
	case "csv":
		records, err := csv.NewReader(r).ReadAll()
		if err != nil {
			return nil, err
		}
		for i, rec := range records {
			if len(rec) < 2 {
				return nil, fmt.Errorf("line %d: want name,slug", i+1)
			}
			if i == 0 && rec[0] == "name" && rec[1] == "slug" {
				continue
			}
			rows = append(rows, TagRow{Name: rec[0], Slug: rec[1]})
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&rows); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownFormat
	}

	out := rows[:0]
	for _, row := range rows {
		row.Name = strings.TrimSpace(row.Name)
		row.Slug = strings.TrimSpace(row.Slug)
		if row.Name == "" && row.Slug == "" {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
