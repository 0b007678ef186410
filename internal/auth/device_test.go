package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const chromeMacUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestDescribeClient(t *testing.T) {
	assert.Equal(t, "Unknown Client", DescribeClient(""))
	assert.Equal(t, "Unknown Client", DescribeClient("not-a-real-user-agent"))

	desc := DescribeClient(chromeMacUA)
	assert.Contains(t, desc, "Chrome")
	assert.Contains(t, desc, " on ")
}

func TestDeviceFingerprint(t *testing.T) {
	a := DeviceFingerprint("192.168.1.1", chromeMacUA)
	b := DeviceFingerprint("192.168.1.1", chromeMacUA)
	c := DeviceFingerprint("192.168.1.2", chromeMacUA)

	assert.Len(t, a, 32)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
