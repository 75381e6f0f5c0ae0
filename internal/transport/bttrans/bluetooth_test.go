package bttrans

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddressValid(t *testing.T) {
	addr, err := ParseAddress("AA:BB:CC:DD:EE:FF")
	assert.NoError(t, err)
	assert.Equal(t, Address{0XAA, 0XBB, 0XCC, 0XDD, 0XEE, 0XFF}, addr)
}

func TestParseAddressLowercase(t *testing.T) {
	addr, err := ParseAddress("aa:bb:cc:dd:ee:ff")
	assert.NoError(t, err)
	assert.Equal(t, Address{0XAA, 0XBB, 0XCC, 0XDD, 0XEE, 0XFF}, addr)
}

func TestParseAddressRejectsGarbage(t *testing.T) {
	_, err := ParseAddress("not-an-address")
	assert.Error(t, err)
}

func TestParseAddressRejectsShortAddress(t *testing.T) {
	_, err := ParseAddress("AA:BB:CC")
	assert.Error(t, err)
}

func TestNewIsUnopened(t *testing.T) {
	tr := New(1)
	assert.Equal(t, -1, tr.fd)
}

func TestOpenRejectsBadEndpoint(t *testing.T) {
	tr := New(1)
	err := tr.Open("garbage")
	assert.Error(t, err)
}
