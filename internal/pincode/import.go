// Package pincode loads the postal reference table from CSV.
package pincode

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iliyamo/sabha-admin/internal/model"
)

// DefaultBatch is the number of rows sent per multi-row INSERT.
const DefaultBatch = 500

var columns = []string{"officename", "pincode", "officetype", "district", "statename", "latitude", "longitude"}

// Inserter is satisfied by repository.PincodeRepo.
type Inserter interface {
	InsertBatch(ctx context.Context, offices []model.PostOffice) (int64, error)
}

// Import reads r as CSV with a header row and writes it through dst in
// batches.  Header names are matched case-insensitively and may appear in
// any order; extra columns are ignored.  It returns the rows written.
func Import(ctx context.Context, r io.Reader, dst Inserter, batch int) (int64, error) {
	if batch <= 0 {
		batch = DefaultBatch
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	idx, err := indexColumns(header)
	if err != nil {
		return 0, err
	}

	var (
		total int64
		buf   = make([]model.PostOffice, 0, batch)
		line  = 1
	)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		n, err := dst.InsertBatch(ctx, buf)
		if err != nil {
			return err
		}
		total += n
		buf = buf[:0]
		return nil
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return total, fmt.Errorf("line %d: %w", line, err)
		}
		p, err := parseRecord(rec, idx)
		if err != nil {
			return total, fmt.Errorf("line %d: %w", line, err)
		}
		buf = append(buf, p)
		if len(buf) == batch {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range []string{"officename", "pincode"} {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}
	return idx, nil
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// coord parses a coordinate; blanks and "NA" are stored as NULL.
func coord(s string) (*float64, error) {
	if s == "" || strings.EqualFold(s, "NA") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseRecord(rec []string, idx map[string]int) (model.PostOffice, error) {
	p := model.PostOffice{
		OfficeName: field(rec, idx, "officename"),
		OfficeType: field(rec, idx, "officetype"),
		District:   field(rec, idx, "district"),
		StateName:  field(rec, idx, "statename"),
	}
	if p.OfficeName == "" {
		return p, errors.New("empty officename")
	}
	pin, err := strconv.Atoi(field(rec, idx, "pincode"))
	if err != nil || pin <= 0 {
		return p, fmt.Errorf("invalid pincode %q", field(rec, idx, "pincode"))
	}
	p.Pincode = pin
	if p.Latitude, err = coord(field(rec, idx, "latitude")); err != nil {
		return p, fmt.Errorf("invalid latitude: %w", err)
	}
	if p.Longitude, err = coord(field(rec, idx, "longitude")); err != nil {
		return p, fmt.Errorf("invalid longitude: %w", err)
	}
	return p, nil
}
