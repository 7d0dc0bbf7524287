package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

var (
	supplierHeader = []string{"supplier_id", "name", "contact_person", "email", "phone", "address", "tier"}
	pyramidHeader  = []string{"pyramid_id", "quality_grade", "zone", "origin_x", "origin_y", "origin_z", "shape_x", "shape_y", "shape_z", "status"}
)

// Loader handles loading yard master data from CSV files
type Loader struct {
	now func() time.Time
}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{now: time.Now}
}

// LoadSuppliers loads suppliers from a CSV file
func (l *Loader) LoadSuppliers(filename string) ([]entities.Supplier, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open suppliers file %s: %w", filename, err)
	}
	defer file.Close()
	return l.ReadSuppliers(file)
}

// ReadSuppliers parses suppliers from CSV
func (l *Loader) ReadSuppliers(r io.Reader) ([]entities.Supplier, error) {
	records, err := readRecords(r, "suppliers", supplierHeader)
	if err != nil {
		return nil, err
	}

	createdAt := l.now()
	var suppliers []entities.Supplier
	for i, record := range records {
		supplier, err := parseSupplier(record, createdAt)
		if err != nil {
			return nil, fmt.Errorf("suppliers CSV row %d: %w", i+2, err)
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, nil
}

// LoadPyramids loads pyramids from a CSV file
func (l *Loader) LoadPyramids(filename string) ([]entities.Pyramid, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open pyramids file %s: %w", filename, err)
	}
	defer file.Close()
	return l.ReadPyramids(file)
}

// ReadPyramids parses pyramids from CSV
func (l *Loader) ReadPyramids(r io.Reader) ([]entities.Pyramid, error) {
	records, err := readRecords(r, "pyramids", pyramidHeader)
	if err != nil {
		return nil, err
	}

	var pyramids []entities.Pyramid
	for i, record := range records {
		pyramid, err := parsePyramid(record)
		if err != nil {
			return nil, fmt.Errorf("pyramids CSV row %d: %w", i+2, err)
		}
		pyramids = append(pyramids, pyramid)
	}
	return pyramids, nil
}

// readRecords reads all rows, validates the header and returns the data rows
func readRecords(r io.Reader, name string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", name)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseSupplier(record []string, createdAt time.Time) (entities.Supplier, error) {
	tier, err := strconv.Atoi(strings.TrimSpace(record[6]))
	if err != nil {
		return entities.Supplier{}, fmt.Errorf("invalid tier: %s", record[6])
	}

	supplier, err := entities.NewSupplier(strings.TrimSpace(record[0]), strings.TrimSpace(record[1]), entities.Tier(tier), createdAt)
	if err != nil {
		return entities.Supplier{}, err
	}
	supplier.ContactPerson = record[2]
	supplier.Email = record[3]
	supplier.Phone = record[4]
	supplier.Address = record[5]
	return *supplier, nil
}

func parsePyramid(record []string) (entities.Pyramid, error) {
	ints := make([]int, 6)
	for i := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(record[3+i]))
		if err != nil {
			return entities.Pyramid{}, fmt.Errorf("invalid %s: %s", pyramidHeader[3+i], record[3+i])
		}
		ints[i] = v
	}

	status, err := parsePyramidStatus(record[9])
	if err != nil {
		return entities.Pyramid{}, err
	}

	pyramid, err := entities.NewPyramid(
		strings.TrimSpace(record[0]),
		entities.Grade(strings.ToUpper(strings.TrimSpace(record[1]))),
		record[2],
		entities.Coord{X: ints[0], Y: ints[1], Z: ints[2]},
		entities.Shape{X: ints[3], Y: ints[4], Z: ints[5]},
		status,
	)
	if err != nil {
		return entities.Pyramid{}, err
	}
	return *pyramid, nil
}

func parsePyramidStatus(s string) (entities.PyramidStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active":
		return entities.PyramidActive, nil
	case "locked":
		return entities.PyramidLocked, nil
	default:
		return entities.PyramidActive, fmt.Errorf("invalid status: %s (expected: Active or Locked)", s)
	}
}
