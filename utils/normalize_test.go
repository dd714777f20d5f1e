package utils

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/stretchr/testify/assert"
)

func TestDecimalToFloat(t *testing.T) {
	assert.Equal(t, 5.5, DecimalToFloat(attributevalue.Number("5.5")))
	assert.Equal(t, 7.0, DecimalToFloat(json.Number("7")))
	assert.Equal(t, "sensor_01", DecimalToFloat("sensor_01"))
	assert.Nil(t, DecimalToFloat(nil))
	assert.Equal(t, true, DecimalToFloat(true))
	// unparsable numbers are left alone
	assert.Equal(t, attributevalue.Number("n/a"), DecimalToFloat(attributevalue.Number("n/a")))
}

func TestNormalizeNumbersWalksNestedValues(t *testing.T) {
	body := map[string]any{
		"data": []map[string]any{
			{"temperature": attributevalue.Number("4.2"), "device_id": "sensor_01"},
			{"temperature": nil, "device_id": "sensor_02"},
		},
		"nested": map[string]any{"values": []any{json.Number("1.5"), "x"}},
		"rooms":  []string{"room_001"},
		"count":  2,
	}

	got := NormalizeNumbers(body).(map[string]any)

	data := got["data"].([]any)
	assert.Equal(t, 4.2, data[0].(map[string]any)["temperature"])
	assert.Nil(t, data[1].(map[string]any)["temperature"])
	assert.Equal(t, []any{1.5, "x"}, got["nested"].(map[string]any)["values"])
	assert.Equal(t, []any{"room_001"}, got["rooms"])
	assert.Equal(t, 2, got["count"])
}

func TestMapLeavesDoesNotMutateInput(t *testing.T) {
	item := map[string]any{"temperature": attributevalue.Number("6.1")}

	_ = MapLeaves(map[string]any{"data": []map[string]any{item}}, DecimalToFloat)

	assert.Equal(t, attributevalue.Number("6.1"), item["temperature"])
}

func TestNormalizeNumbersIsIdempotent(t *testing.T) {
	body := map[string]any{"data": []any{map[string]any{"t": json.Number("5.0")}}}
	once := NormalizeNumbers(body)
	assert.Equal(t, once, NormalizeNumbers(once))
}
