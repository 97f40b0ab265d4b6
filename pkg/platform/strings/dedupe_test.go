package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name   string
		input  []string
		expect []string
	}{
		{name: "nil input", input: nil, expect: nil},
		{name: "empty input", input: []string{}, expect: []string{}},
		{name: "trims and drops blanks", input: []string{" 1 ", "", "  ", "3"}, expect: []string{"1", "3"}},
		{name: "keeps first occurrence order", input: []string{"5", "1", "5", "3", "1"}, expect: []string{"5", "1", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, DedupeAndTrim(tt.input))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList("   ", ","))
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, SplitList("kafka-1:9092, kafka-2:9092,kafka-1:9092", ","))
}
