package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleJSONFlatShape(t *testing.T) {
	data := []byte(`{"Role": "Advanced Forward - Attack", "RoleCode": "AFA", "Acc": 5, "Fin": 5, "Dri": 3}`)

	var role Role
	require.NoError(t, json.Unmarshal(data, &role))

	assert.Equal(t, "Advanced Forward - Attack", role.Name)
	assert.Equal(t, "AFA", role.Code)
	assert.Equal(t, 5, role.Weight("Acc"))
	assert.Equal(t, 5, role.Weight("Fin"))
	assert.Equal(t, 3, role.Weight("Dri"))
	assert.Equal(t, 0, role.Weight("Han"))
	assert.Equal(t, 0, role.Weight("NotASlot"))

	out, err := json.Marshal(role)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Len(t, fields, SlotCount+2)
	assert.Equal(t, "AFA", fields["RoleCode"])
	assert.Equal(t, float64(3), fields["Dri"])
	assert.Equal(t, float64(0), fields["TRO"])
}

func TestRoleJSONRejectsBadWeight(t *testing.T) {
	var role Role
	err := json.Unmarshal([]byte(`{"Role": "X", "RoleCode": "X", "Acc": "high"}`), &role)
	assert.Error(t, err)
}

func TestAttributeSlotsAreUnique(t *testing.T) {
	seen := make(map[string]bool, SlotCount)
	for _, slot := range AttributeSlots {
		assert.False(t, seen[slot], "duplicate slot %s", slot)
		seen[slot] = true
	}
	assert.True(t, seen["TRO"])
	assert.True(t, seen["Cor"])
}

func TestAttributeValueJSON(t *testing.T) {
	var rec PlayerRecord
	data := []byte(`{"Name": "Alice", "Pac": 15, "Acc": "14-16", "Injured": false, "attributes": {"Fin": 12}, "Note": null}`)
	require.NoError(t, json.Unmarshal(data, &rec))

	assert.Equal(t, KindTextual, rec["Name"].Kind())
	assert.Equal(t, "Alice", rec["Name"].Text())
	assert.Equal(t, KindNumeric, rec["Pac"].Kind())
	assert.Equal(t, 15.0, rec["Pac"].Number())
	assert.Equal(t, KindTextual, rec["Acc"].Kind())
	assert.Equal(t, KindOpaque, rec["Injured"].Kind())
	assert.Equal(t, KindOpaque, rec["attributes"].Kind())
	assert.JSONEq(t, `{"Fin": 12}`, string(rec["attributes"].Raw()))
	assert.Equal(t, KindOpaque, rec["Note"].Kind())

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(out))
}

func TestScoredRecordMarshal(t *testing.T) {
	rec := ScoredRecord{
		Fields:     PlayerRecord{"Name": TextValue("Alice"), "Pac": NumberValue(15)},
		RoleScores: map[string]float64{"AFA": 62.5},
		BestRole:   &RoleScore{Code: "AFA", Name: "Advanced Forward - Attack", Score: 62.5},
	}

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Name": "Alice",
		"Pac": 15,
		"roleScores": {"AFA": 62.5},
		"bestRole": {"code": "AFA", "name": "Advanced Forward - Attack", "score": 62.5}
	}`, string(out))

	out, err = json.Marshal(ScoredRecord{Fields: PlayerRecord{"Name": TextValue("Bob")}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Name": "Bob", "roleScores": {}}`, string(out))
}

func TestRecordFromPlayer(t *testing.T) {
	p := Player{
		Name:       "Alice",
		Club:       "United",
		Attributes: RawAttributeMap{"Pac": 15, "Fin": 12, "Value": 0},
		Prices:     map[string]float64{"Value": 14.5e6},
	}

	rec := RecordFromPlayer(p)
	assert.Equal(t, 14.5e6, rec["Value"].Number())
	assert.Equal(t, "Alice", rec[ColumnName].Text())
	assert.Equal(t, "United", rec[ColumnClub].Text())
	assert.Equal(t, "", rec[ColumnNationality].Text())
	assert.Equal(t, 15.0, rec["Pac"].Number())
	assert.Equal(t, KindNumeric, rec["Fin"].Kind())
}

func TestIsPriceColumn(t *testing.T) {
	assert.True(t, IsPriceColumn("Transfer Value"))
	assert.True(t, IsPriceColumn("Wage"))
	assert.False(t, IsPriceColumn("wage"))
	assert.False(t, IsPriceColumn("Fin"))
}

func TestImportResults(t *testing.T) {
	ok := NewImportResult([]Player{{Name: "Alice"}, {Name: "Bob"}})
	assert.True(t, ok.Success)
	assert.Equal(t, 2, ok.PlayerCount)
	assert.Nil(t, ok.Error)

	failed := FailedImportResult(errors.New("no valid player data found in CSV file"))
	assert.False(t, failed.Success)
	assert.Zero(t, failed.PlayerCount)
	assert.NotNil(t, failed.Players)
	require.NotNil(t, failed.Error)
	assert.Equal(t, "no valid player data found in CSV file", *failed.Error)

	out, err := json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": false, "player_count": 0, "players": [], "error": "no valid player data found in CSV file"}`, string(out))
}
