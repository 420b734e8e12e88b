// internal/models/asset.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// AssetRef identifies one image held by the remote image store. Key is what
// the store needs to delete the object; URL is its default delivery address.
type AssetRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (a AssetRef) IsZero() bool {
	return a.Key == ""
}

// Equal compares by remote object key only.
func (a AssetRef) Equal(other AssetRef) bool {
	return a.Key == other.Key
}

func (a AssetRef) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *AssetRef) Scan(value interface{}) error {
	if value == nil {
		*a = AssetRef{}
		return nil
	}
	b, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, a)
}

// AssetRefs is an ordered list of image references stored as a JSON document.
type AssetRefs []AssetRef

func (refs AssetRefs) Contains(ref AssetRef) bool {
	for _, r := range refs {
		if r.Equal(ref) {
			return true
		}
	}
	return false
}

// Without returns refs with every element equal to one of drop removed.
// Order is preserved.
func (refs AssetRefs) Without(drop ...AssetRef) AssetRefs {
	out := make(AssetRefs, 0, len(refs))
	for _, r := range refs {
		if AssetRefs(drop).Contains(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Difference returns the refs present in refs but absent from other.
func (refs AssetRefs) Difference(other AssetRefs) AssetRefs {
	return refs.Without(other...)
}

// Unique drops later duplicates, keeping first-seen order.
func (refs AssetRefs) Unique() AssetRefs {
	out := make(AssetRefs, 0, len(refs))
	for _, r := range refs {
		if !out.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

func (refs AssetRefs) Value() (driver.Value, error) {
	if refs == nil {
		return "[]", nil
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (refs *AssetRefs) Scan(value interface{}) error {
	if value == nil {
		*refs = AssetRefs{}
		return nil
	}
	b, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, refs)
}

func (AssetRef) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

func (AssetRefs) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

func jsonColumnType(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported asset column type %T", value)
	}
}
