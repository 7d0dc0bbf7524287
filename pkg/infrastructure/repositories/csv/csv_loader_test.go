package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/baleyard/pkg/domain/entities"
)

func TestReadSuppliers(t *testing.T) {
	created := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	l := &Loader{now: func() time.Time { return created }}

	input := `supplier_id,name,contact_person,email,phone,address,tier
SUP001,Agro Prime,Asha Rao,asha@agroprime.example,+91 20 5550 0100,"Plot 4, MIDC",1
SUP002,HarvestCo,,,,,2
`
	suppliers, err := l.ReadSuppliers(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, suppliers, 2)
	assert.Equal(t, "Plot 4, MIDC", suppliers[0].Address)
	assert.Equal(t, entities.Tier1, suppliers[0].Tier)
	assert.Equal(t, entities.SupplierActive, suppliers[1].Status)
	assert.Equal(t, created, suppliers[1].CreatedAt)
}

func TestReadSuppliers_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"header only", "supplier_id,name,contact_person,email,phone,address,tier\n", "at least one data row"},
		{"wrong header", "id,name\nSUP1,A\n", "header mismatch"},
		{"bad tier", "supplier_id,name,contact_person,email,phone,address,tier\nSUP1,A,,,,,x\n", "row 2: invalid tier"},
		{"tier out of range", "supplier_id,name,contact_person,email,phone,address,tier\nSUP1,A,,,,,4\n", "row 2: tier must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().ReadSuppliers(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadPyramids(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyramids.csv")
	input := `pyramid_id,quality_grade,zone,origin_x,origin_y,origin_z,shape_x,shape_y,shape_z,status
PYR-A1,a,North,0,0,0,8,8,5,Active
PYR-B1,B,South,20,0,0,4,4,3,locked
`
	require.NoError(t, os.WriteFile(path, []byte(input), 0o600))

	pyramids, err := NewLoader().LoadPyramids(path)
	require.NoError(t, err)
	require.Len(t, pyramids, 2)
	assert.Equal(t, entities.GradeA, pyramids[0].QualityGrade)
	assert.Equal(t, 320, pyramids[0].Capacity)
	assert.Equal(t, entities.Coord{X: 20}, pyramids[1].Origin)
	assert.Equal(t, entities.PyramidLocked, pyramids[1].Status)
	assert.Equal(t, 48, pyramids[1].Capacity)

	_, err = NewLoader().LoadPyramids(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestReadPyramids_Errors(t *testing.T) {
	header := "pyramid_id,quality_grade,zone,origin_x,origin_y,origin_z,shape_x,shape_y,shape_z,status\n"
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad coordinate", "P,A,Z,x,0,0,1,1,1,Active", "invalid origin_x"},
		{"zero shape", "P,A,Z,0,0,0,0,1,1,Active", "shape dimensions must be positive"},
		{"unknown grade", "P,C,Z,0,0,0,1,1,1,Active", "unknown quality grade"},
		{"unknown status", "P,A,Z,0,0,0,1,1,1,Full", "invalid status"},
		{"short row", "P,A,Z", "expected 10 columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().ReadPyramids(strings.NewReader(header + tt.row + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
