package firemon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecord(t *testing.T, s string) Record {
	t.Helper()
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(s), &rec))
	return rec
}

func TestRecord_Name(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"name wins", `{"id": 3, "name": "edge", "artifactId": "asa"}`, "edge"},
		{"artifact id", `{"id": 3, "artifactId": "asa"}`, "asa"},
		{"id", `{"id": 3}`, "3"},
		{"nothing", `{"description": "x"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeRecord(t, tt.json).Name())
		})
	}
}

func TestRecord_Accessors(t *testing.T) {
	rec := decodeRecord(t, `{
		"id": 12,
		"managementIp": "10.0.0.1",
		"enabled": true,
		"devicePack": {"artifactId": "cisco_asa", "id": 4},
		"children": [{"id": 1}, {"id": 2}, "junk"]
	}`)

	assert.Equal(t, 12, rec.ID())
	assert.Equal(t, "12", rec.Str("id"))
	assert.Equal(t, "10.0.0.1", rec.Str("managementIp"))
	assert.True(t, rec.Bool("enabled"))
	assert.Equal(t, "cisco_asa", rec.Map("devicePack").Str("artifactId"))
	assert.Len(t, rec.Records("children"), 2)
	assert.Nil(t, rec.Map("missing"))
	assert.Equal(t, "", rec.Str("missing"))
	assert.Equal(t, []string{"children", "devicePack", "enabled", "id", "managementIp"}, rec.Keys())
}

func TestRecord_Matches(t *testing.T) {
	rec := decodeRecord(t, `{"id": 21, "name": "fw", "devicePackId": 40, "tags": ["a", "b"]}`)

	assert.True(t, rec.Matches(map[string]any{"id": 21}))
	assert.True(t, rec.Matches(map[string]any{"id": "21", "name": "fw"}))
	assert.True(t, rec.Matches(map[string]any{"tags": []string{"a", "b"}}))
	assert.False(t, rec.Matches(map[string]any{"id": 22}))
	assert.False(t, rec.Matches(map[string]any{"vendor": "Cisco"}))
	assert.True(t, rec.Matches(nil))
}

func TestRecord_Decode(t *testing.T) {
	rec := decodeRecord(t, `{"id": 5, "name": "edge", "managementIp": "10.1.1.1", "extra": 1}`)

	var out struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		ManagementIP string `json:"managementIp"`
	}
	require.NoError(t, rec.Decode(&out))
	assert.Equal(t, 5, out.ID)
	assert.Equal(t, "edge", out.Name)
	assert.Equal(t, "10.1.1.1", out.ManagementIP)
}

func TestRecord_CloneIsDeep(t *testing.T) {
	rec := decodeRecord(t, `{"devicePack": {"id": 4}, "list": [1, 2]}`)

	clone := rec.Clone()
	clone.Map("devicePack")["id"] = 99.0
	clone.Slice("list")[0] = 7.0

	assert.Equal(t, 4, rec.Map("devicePack").ID())
	assert.Equal(t, 1.0, rec.Slice("list")[0])

	without := rec.Without("list")
	assert.False(t, without.Has("list"))
	assert.True(t, rec.Has("list"))
}

func TestObject_DiffAndSerialize(t *testing.T) {
	obj := NewObject(nil, "https://fmos/securitymanager/api/domain/1/device/", decodeRecord(t,
		`{"id": 7, "name": "old", "gpcStatus": "OK", "description": ""}`))
	obj.SetReadOnly("gpcStatus")

	assert.Empty(t, obj.Diff())
	assert.Equal(t, "https://fmos/securitymanager/api/domain/1/device/7", obj.URL())

	obj.Set("name", "new")
	obj.Set("vendor", "Cisco")

	assert.Equal(t, Record{"name": "new", "vendor": "Cisco"}, obj.Diff())

	out := obj.Serialize()
	assert.False(t, out.Has("gpcStatus"))
	assert.Equal(t, "new", out.Str("name"))
	assert.Equal(t, "new", obj.String())
}
