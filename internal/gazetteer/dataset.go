package gazetteer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Dataset is an immutable, ordered snapshot of the gazetteer records.
type Dataset struct {
	records []Record
	index   map[int]int
}

// NewDataset validates records and builds an indexed snapshot. The input slice
// is copied; callers may reuse it.
func NewDataset(records []Record) (*Dataset, error) {
	ds := &Dataset{
		records: make([]Record, 0, len(records)),
		index:   make(map[int]int, len(records)),
	}
	var duplicates, imageless []int
	for _, r := range records {
		if _, seen := ds.index[r.ID]; seen {
			duplicates = append(duplicates, r.ID)
			continue
		}
		if len(r.Images) == 0 {
			imageless = append(imageless, r.ID)
		}
		ds.index[r.ID] = len(ds.records)
		ds.records = append(ds.records, cloneRecord(r))
	}
	if len(duplicates) > 0 || len(imageless) > 0 {
		return nil, &ValidationError{DuplicateIDs: duplicates, MissingImages: imageless}
	}
	return ds, nil
}

// Decode reads a JSON array of records and returns the validated dataset.
func Decode(r io.Reader) (*Dataset, error) {
	var records []Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("gazetteer: decode dataset: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("gazetteer: decode dataset: unexpected data after the record array")
	}
	return NewDataset(records)
}

// Records returns a copy of all records in dataset order.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	out := make([]Record, len(d.records))
	for i, r := range d.records {
		out[i] = cloneRecord(r)
	}
	return out
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// ByID looks up a record by id.
func (d *Dataset) ByID(id int) (Record, bool) {
	if d == nil {
		return Record{}, false
	}
	i, ok := d.index[id]
	if !ok {
		return Record{}, false
	}
	return cloneRecord(d.records[i]), true
}

// First returns the first record in dataset order.
func (d *Dataset) First() (Record, bool) {
	if d == nil || len(d.records) == 0 {
		return Record{}, false
	}
	return cloneRecord(d.records[0]), true
}

// ValidationError lists records that break dataset invariants.
type ValidationError struct {
	DuplicateIDs  []int
	MissingImages []int
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.DuplicateIDs) > 0 {
		parts = append(parts, "duplicate ids ["+joinIDs(e.DuplicateIDs)+"]")
	}
	if len(e.MissingImages) > 0 {
		parts = append(parts, "records without images ["+joinIDs(e.MissingImages)+"]")
	}
	return "gazetteer: invalid dataset: " + strings.Join(parts, "; ")
}

func joinIDs(ids []int) string {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	out := make([]string, len(sorted))
	for i, id := range sorted {
		out[i] = strconv.Itoa(id)
	}
	return strings.Join(out, ", ")
}
