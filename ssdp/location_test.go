package ssdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLocations(t *testing.T) {
	locs := BuildLocations(testAddresses(), "/device/desc.xml")
	assert.Len(t, locs, 2)
	assert.Equal(t, "http://10.128.1.252:1400/device/desc.xml", locs[0].URL())
	assert.Equal(t, "http://100.119.242.91:1400/device/desc.xml", locs[1].URL())

	assert.Empty(t, BuildLocations(nil, "/desc.xml"))
}

func TestLocationURLAddsLeadingSlash(t *testing.T) {
	loc := Location{Address: testAddresses()[0], Path: "desc.xml"}
	assert.Equal(t, "http://10.128.1.252:1400/desc.xml", loc.URL())
}
