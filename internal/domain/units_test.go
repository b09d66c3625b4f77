package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConversionFactor(t *testing.T) {
	assert.Equal(t, 1000.0, DefaultConversionFactor("kg"))
	assert.Equal(t, 1000.0, DefaultConversionFactor("Kg"))
	assert.Equal(t, 1000.0, DefaultConversionFactor(" KG "))
	assert.Equal(t, 1.0, DefaultConversionFactor("g"))
	assert.Equal(t, 1.0, DefaultConversionFactor("l"))
	assert.Equal(t, 1.0, DefaultConversionFactor("piece"))
	assert.Equal(t, 1.0, DefaultConversionFactor(""))
}

func TestDefaultBaseUnit(t *testing.T) {
	assert.Equal(t, "g", DefaultBaseUnit("kg"))
	assert.Equal(t, "g", DefaultBaseUnit("KG"))
	assert.Equal(t, "l", DefaultBaseUnit("l"))
	assert.Equal(t, "piece", DefaultBaseUnit("piece"))
}

func TestToBaseUnits(t *testing.T) {
	assert.Equal(t, 2500.0, ToBaseUnits(2.5, 1000))
	assert.Equal(t, 7.0, ToBaseUnits(7, 1))
	assert.Equal(t, 0.0, ToBaseUnits(0, 1000))
}
