package export

import (
	"testing"

	"vantry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNewInventoryWorkbook(t *testing.T) {
	items := []models.Item{
		{Name: "Burger Buns", Category: "Buns & Chips", Quantity: 0, Threshold: 10},
		{Name: "Cola", Category: "Drinks", Quantity: 40, Threshold: 24},
	}

	f, err := NewInventoryWorkbook(items)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Inventory", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Burger Buns", got)

	status, err := f.GetCellValue("Inventory", "E2")
	require.NoError(t, err)
	assert.Equal(t, "Needs to buy", status)

	status, err = f.GetCellValue("Inventory", "E3")
	require.NoError(t, err)
	assert.Equal(t, "Good", status)
}

func TestWriteInventoryFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteInventoryFile([]models.Item{{Name: "Cola", Category: "Drinks"}}, dir)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Inventory", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Cola", got)
}
