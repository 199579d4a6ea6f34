package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowData_SetAndGet(t *testing.T) {
	row := RowData{}
	row.Set("OrderNumber", "4079038")
	row.Set("Customer", "Acme")
	row.Set("Customer", "Acme GmbH")

	customer, ok := row.Get("Customer")
	require.True(t, ok)
	assert.Equal(t, "Acme GmbH", customer)

	_, ok = row.Get("Missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"OrderNumber", "Customer"}, row.Keys())
}

func TestRowData_Equal(t *testing.T) {
	a := RowData{{"OrderNumber", "4079038"}, {"Customer", "Acme"}}
	b := RowData{{"OrderNumber", "4079038"}, {"Customer", "Acme"}}
	assert.True(t, a.Equal(b))

	// Same pairs in a different order are not equal.
	c := RowData{{"Customer", "Acme"}, {"OrderNumber", "4079038"}}
	assert.False(t, a.Equal(c))

	d := RowData{{"OrderNumber", "4079038"}}
	assert.False(t, a.Equal(d))
}

func TestRowData_JSONPreservesColumnOrder(t *testing.T) {
	row := RowData{
		{"Zebra", "1"},
		{"Alpha", "2"},
		{"Mitte", "3"},
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"Zebra":"1","Alpha":"2","Mitte":"3"}`, string(data))

	var decoded RowData
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, row.Equal(decoded))
	assert.Equal(t, []string{"Zebra", "Alpha", "Mitte"}, decoded.Keys())
}

func TestRowData_UnmarshalCoercesScalars(t *testing.T) {
	var row RowData
	require.NoError(t, json.Unmarshal([]byte(`{"Qty":5,"Done":true,"Note":null}`), &row))

	qty, _ := row.Get("Qty")
	assert.Equal(t, "5", qty)
	done, _ := row.Get("Done")
	assert.Equal(t, "true", done)
	note, _ := row.Get("Note")
	assert.Equal(t, "", note)
}

func TestRowData_UnmarshalRejectsNonObject(t *testing.T) {
	var row RowData
	assert.Error(t, json.Unmarshal([]byte(`["a","b"]`), &row))
}

func TestRowData_UnmarshalRejectsNestedValues(t *testing.T) {
	var row RowData

	err := json.Unmarshal([]byte(`{"A":{"b":1}}`), &row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `nested value for key "A"`)

	err = json.Unmarshal([]byte(`{"A":[1,2]}`), &row)
	assert.Error(t, err)
}

func TestRowData_Clone(t *testing.T) {
	row := RowData{{"OrderNumber", "4079038"}}
	clone := row.Clone()
	clone.Set("OrderNumber", "changed")

	original, _ := row.Get("OrderNumber")
	assert.Equal(t, "4079038", original)

	assert.Nil(t, RowData(nil).Clone())
}

func TestMethodFromHistory(t *testing.T) {
	tests := []struct {
		name    string
		history []ChangeEntry
		want    AttachmentMethod
	}{
		{"empty", nil, AttachmentNone},
		{
			"automatic attach",
			[]ChangeEntry{{Action: ChangeAttach, Reason: ReasonAutomaticMatching}},
			AttachmentAutomatic,
		},
		{
			"manual attach",
			[]ChangeEntry{{Action: ChangeAttach, Reason: "customer sent file"}},
			AttachmentManual,
		},
		{
			"manual replace after automatic",
			[]ChangeEntry{
				{Action: ChangeAttach, Reason: ReasonAutomaticMatching},
				{Action: ChangeReplace, Reason: "wrong file"},
			},
			AttachmentManual,
		},
		{
			"remove resets",
			[]ChangeEntry{
				{Action: ChangeAttach, Reason: ReasonAutomaticMatching},
				{Action: ChangeRemove, Reason: ReasonFileDeleted},
			},
			AttachmentNone,
		},
		{
			"archive preserves",
			[]ChangeEntry{
				{Action: ChangeAttach, Reason: ReasonAutomaticMatching},
				{Action: ChangeArchive, Reason: ReasonArchived},
			},
			AttachmentAutomatic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MethodFromHistory(tt.history))
		})
	}
}
