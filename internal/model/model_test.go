package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_CSVFile(t *testing.T) {
	assert.Equal(t, "fact_sales.csv", Table{Name: "fact_sales"}.CSVFile())
	assert.Equal(t, "sales/2024.csv", Table{Name: "fact_sales", File: "sales/2024.csv"}.CSVFile())
}

func TestRelationship_CardinalityOrDefault(t *testing.T) {
	r := Relationship{From: "fact_sales", To: "dim_product"}
	assert.Equal(t, "}o--o{", r.CardinalityOrDefault())

	r.Cardinality = "||--o{"
	assert.Equal(t, "||--o{", r.CardinalityOrDefault())
}

func TestRelationship_Label(t *testing.T) {
	r := Relationship{FromColumn: "product_id", ToColumn: "product_id"}
	assert.Equal(t, "product_id -> product_id", r.Label())
}

func TestSchema_TableNames(t *testing.T) {
	s := Schema{Tables: []Table{
		{Name: "fact_sales", Key: "sale_id"},
		{Name: "dim_product", Key: "product_id"},
	}}

	// Declaration order is load order and union order
	assert.Equal(t, []string{"fact_sales", "dim_product"}, s.TableNames())
}

func TestSchema_TableLookup(t *testing.T) {
	s := Schema{Tables: []Table{{Name: "dim_store", Key: "store_id"}}}

	tbl, ok := s.Table("dim_store")
	require.True(t, ok)
	assert.Equal(t, "store_id", tbl.Key)

	_, ok = s.Table("dim_ghost")
	assert.False(t, ok)
}

func TestSchema_Validate(t *testing.T) {
	valid := func() Schema {
		return Schema{
			Tables: []Table{
				{Name: "fact_sales", Key: "sale_id"},
				{Name: "dim_product", Key: "product_id"},
			},
			Relationships: []Relationship{
				{From: "fact_sales", To: "dim_product", FromColumn: "product_id", ToColumn: "product_id"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Schema)
		wantErr string
	}{
		{
			name:   "valid schema",
			mutate: func(*Schema) {},
		},
		{
			name:    "no tables",
			mutate:  func(s *Schema) { s.Tables = nil },
			wantErr: "no tables declared",
		},
		{
			name:    "missing table name",
			mutate:  func(s *Schema) { s.Tables[0].Name = "" },
			wantErr: "name is required",
		},
		{
			name:    "missing key column",
			mutate:  func(s *Schema) { s.Tables[1].Key = "" },
			wantErr: "key column is required",
		},
		{
			name:    "duplicate table",
			mutate:  func(s *Schema) { s.Tables[1] = s.Tables[0] },
			wantErr: "declared more than once",
		},
		{
			name:    "edge to undeclared table",
			mutate:  func(s *Schema) { s.Relationships[0].To = "dim_ghost" },
			wantErr: "not declared",
		},
		{
			name:    "edge missing join columns",
			mutate:  func(s *Schema) { s.Relationships[0].FromColumn = "" },
			wantErr: "join columns are required",
		},
		{
			name:    "invalid cardinality",
			mutate:  func(s *Schema) { s.Relationships[0].Cardinality = "<-->" },
			wantErr: "invalid cardinality",
		},
		{
			name:   "explicit valid cardinality",
			mutate: func(s *Schema) { s.Relationships[0].Cardinality = "||--o{" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIsValidCardinality(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"}o--o{", true},
		{"||--o{", true},
		{"||--||", true},
		{"}|--|{", true},
		{"|o--o|", true},
		{"o{--}o", false}, // ends swapped
		{"}o-o{", false},  // single dash
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidCardinality(tt.token))
		})
	}
}

func TestDefault(t *testing.T) {
	s := Default()

	require.NoError(t, s.Validate())
	assert.Len(t, s.Tables, 6)
	assert.Len(t, s.Relationships, 8)

	// Facts first, then dimensions, matching the dataset layout
	assert.Equal(t, "fact_sales", s.Tables[0].Name)
	assert.Equal(t, "sale_id", s.Tables[0].Key)

	for _, r := range s.Relationships {
		from, ok := s.Table(r.From)
		require.True(t, ok)
		assert.True(t, len(from.Name) > 0)
	}
}
