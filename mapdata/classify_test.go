package mapdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		category string
		want     FacilityKind
	}{
		{"restaurant", KindBusiness},
		{"casino", KindBusiness},
		{"pawnbroker", KindBusiness},
		{"townhall", KindBase},
		{"police", KindBase},
		{"bus_stop", KindIgnored},
		{"", KindIgnored},
	}
	for _, tc := range cases {
		got := Classify(RawRecord{ID: "x", Category: tc.category})
		assert.Equal(t, tc.want, got, "category %q", tc.category)
	}
}

func TestIsShop(t *testing.T) {
	assert.True(t, IsShop("supermarket"))
	assert.True(t, IsShop("pharmacy"))
	assert.False(t, IsShop("bar"))
	assert.False(t, IsShop("townhall"))
}
