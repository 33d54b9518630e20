package models

import (
	"encoding/json"
	"fmt"
)

// AttributeSlots lists the fixed attribute short codes a role can weight, in catalogue order.
// TRO (tendency to rush out) only carries weight for goalkeeper roles.
var AttributeSlots = [SlotCount]string{
	"1v1", "Acc", "Aer", "Agg", "Agi", "Ant", "Bal", "Bra", "Cmd", "Cnt",
	"Cmp", "Cro", "Dec", "Det", "Dri", "Fin", "Fir", "Fla", "Han", "Hea",
	"Jum", "Kic", "Ldr", "Lon", "Mar", "OtB", "Pac", "Pas", "Pos", "Ref",
	"Sta", "Str", "Tck", "Tea", "Tec", "Thr", "TRO", "Vis", "Wor", "Cor",
}

// SlotCount is the number of weighted attribute slots per role
const SlotCount = 40

// MaxWeight is the largest weight a role assigns to a slot
const MaxWeight = 20

// Role is a positional archetype with one integer weight per attribute slot
type Role struct {
	Name    string
	Code    string
	Weights [SlotCount]int
}

// Weight returns the role's weight for the attribute short code, or 0 if the code is not a slot
func (r Role) Weight(attr string) int {
	for i, slot := range AttributeSlots {
		if slot == attr {
			return r.Weights[i]
		}
	}
	return 0
}

// UnmarshalJSON reads the flat catalogue shape: {"Role": ..., "RoleCode": ..., "Acc": 3, ...}.
// Slots missing from the record weigh 0.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var decoded Role
	if v, ok := raw["Role"]; ok {
		if err := json.Unmarshal(v, &decoded.Name); err != nil {
			return fmt.Errorf("role name: %w", err)
		}
	}
	if v, ok := raw["RoleCode"]; ok {
		if err := json.Unmarshal(v, &decoded.Code); err != nil {
			return fmt.Errorf("role code: %w", err)
		}
	}
	for i, slot := range AttributeSlots {
		v, ok := raw[slot]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, &decoded.Weights[i]); err != nil {
			return fmt.Errorf("role %q weight %s: %w", decoded.Code, slot, err)
		}
	}

	*r = decoded
	return nil
}

// MarshalJSON writes the same flat shape UnmarshalJSON reads
func (r Role) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, SlotCount+2)
	out["Role"] = r.Name
	out["RoleCode"] = r.Code
	for i, slot := range AttributeSlots {
		out[slot] = r.Weights[i]
	}
	return json.Marshal(out)
}
