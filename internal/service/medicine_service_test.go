package service

import (
	"context"
	"net/http"
	"testing"

	"anoa.com/homeboard/internal/model"
	"anoa.com/homeboard/internal/repository"
	"anoa.com/homeboard/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestMedicineService(db *gorm.DB, today string) *medicineService {
	return &medicineService{
		recordRepo: repository.NewRecordRepository(db),
		now:        fixedClock(today),
	}
}

func createMedicine(t *testing.T, db *gorm.DB, userID uuid.UUID, personID *uuid.UUID, content string, fields map[string]*string) *model.Record {
	t.Helper()
	rec := &model.Record{
		UserID:            userID,
		PersonID:          personID,
		Category:          model.CategoryMedicine,
		Content:           content,
		Frequency:         fields["frequency"],
		Dosage:            fields["dosage"],
		TotalQuantity:     fields["total_quantity"],
		StartDate:         fields["start_date"],
		RefillQuantity:    fields["refill_quantity"],
		ReminderThreshold: fields["reminder_threshold"],
	}
	return createTestRecord(t, db, rec)
}

func TestRollForwardConsumesElapsedDays(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"frequency":      strPtr("2"),
		"dosage":         strPtr("1"),
		"total_quantity": strPtr("30"),
		"start_date":     strPtr("2025-03-04"),
	})

	require.NoError(t, svc.RollForward(context.Background(), user.ID))

	got := fetchRecord(t, db, med.ID)
	assert.Equal(t, "18", *got.TotalQuantity) // 30 - 6 days * 2 * 1
	assert.Equal(t, "2025-03-10", *got.StartDate)
}

func TestRollForwardIsIdempotentWithinADay(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"frequency":      strPtr("2"),
		"dosage":         strPtr("1"),
		"total_quantity": strPtr("30"),
		"start_date":     strPtr("2025-03-04"),
	})

	require.NoError(t, svc.RollForward(context.Background(), user.ID))
	require.NoError(t, svc.RollForward(context.Background(), user.ID))

	got := fetchRecord(t, db, med.ID)
	assert.Equal(t, "18", *got.TotalQuantity)
}

func TestRollForwardClampsStockAtZero(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Vitamin", map[string]*string{
		"frequency":      strPtr("3"),
		"dosage":         strPtr("2"),
		"total_quantity": strPtr("3"),
		"start_date":     strPtr("2025-03-05"),
	})

	require.NoError(t, svc.RollForward(context.Background(), user.ID))

	got := fetchRecord(t, db, med.ID)
	assert.Equal(t, "0", *got.TotalQuantity)
}

func TestRollForwardSkipsUnparseableFields(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Mystery", map[string]*string{
		"frequency":      strPtr("twice a day"),
		"dosage":         strPtr("1"),
		"total_quantity": strPtr("30"),
		"start_date":     strPtr("2025-03-04"),
	})

	require.NoError(t, svc.RollForward(context.Background(), user.ID))

	got := fetchRecord(t, db, med.ID)
	assert.Equal(t, "30", *got.TotalQuantity)
	assert.Equal(t, "2025-03-04", *got.StartDate)
}

func TestRollForwardIgnoresCompletedMedicines(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createTestRecord(t, db, &model.Record{
		UserID:        user.ID,
		Category:      model.CategoryMedicine,
		Content:       "Old med",
		Status:        model.StatusCompleted,
		Frequency:     strPtr("1"),
		Dosage:        strPtr("1"),
		TotalQuantity: strPtr("10"),
		StartDate:     strPtr("2025-03-01"),
	})

	require.NoError(t, svc.RollForward(context.Background(), user.ID))

	got := fetchRecord(t, db, med.ID)
	assert.Equal(t, "10", *got.TotalQuantity)
}

func TestTogglePurchaseCreatesLinkedShoppingRow(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	person := createTestPerson(t, db, user.ID, "Alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, &person.ID, "Aspirin", map[string]*string{
		"total_quantity":  strPtr("3"),
		"refill_quantity": strPtr("20"),
	})

	require.NoError(t, svc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	gotMed := fetchRecord(t, db, med.ID)
	assert.True(t, gotMed.NeedsPurchase)

	var shopping model.Record
	require.NoError(t, db.First(&shopping, "source_record_id = ?", med.ID).Error)
	assert.Equal(t, model.CategoryShopping, shopping.Category)
	assert.Equal(t, "Alice - Aspirin", shopping.Content)
	assert.Equal(t, model.StatusPending, shopping.Status)
	assert.Equal(t, "20", *shopping.Quantity)
	assert.Equal(t, "2025-03-10", *shopping.Date)
}

func TestTogglePurchaseIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"refill_quantity": strPtr("20"),
	})

	require.NoError(t, svc.TogglePurchase(context.Background(), user.ID, med.ID, true))
	require.NoError(t, svc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	var count int64
	require.NoError(t, db.Model(&model.Record{}).Where("source_record_id = ?", med.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTogglePurchaseUsesFallbackLabelWithoutPerson(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", nil)

	require.NoError(t, svc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	var shopping model.Record
	require.NoError(t, db.First(&shopping, "source_record_id = ?", med.ID).Error)
	assert.Equal(t, "未指定 - Aspirin", shopping.Content)
}

func TestTogglePurchaseOffRemovesPendingRow(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"refill_quantity": strPtr("20"),
	})

	require.NoError(t, svc.TogglePurchase(context.Background(), user.ID, med.ID, true))
	require.NoError(t, svc.TogglePurchase(context.Background(), user.ID, med.ID, false))

	gotMed := fetchRecord(t, db, med.ID)
	assert.False(t, gotMed.NeedsPurchase)

	var count int64
	require.NoError(t, db.Model(&model.Record{}).Where("source_record_id = ?", med.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestTogglePurchaseRejectsNonMedicine(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	rec := createTestRecord(t, db, &model.Record{
		UserID:   user.ID,
		Category: model.CategoryGeneral,
		Content:  "not a medicine",
	})

	err := svc.TogglePurchase(context.Background(), user.ID, rec.ID, true)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

func TestRefillAddsStockAndCompletesLinkedRow(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"total_quantity":  strPtr("3"),
		"refill_quantity": strPtr("20"),
		"start_date":      strPtr("2025-03-01"),
	})
	require.NoError(t, svc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	require.NoError(t, svc.Refill(context.Background(), user.ID, med.ID))

	gotMed := fetchRecord(t, db, med.ID)
	assert.Equal(t, "23", *gotMed.TotalQuantity)
	assert.Equal(t, "2025-03-10", *gotMed.StartDate)
	assert.False(t, gotMed.NeedsPurchase)

	var shopping model.Record
	require.NoError(t, db.First(&shopping, "source_record_id = ?", med.ID).Error)
	assert.Equal(t, model.StatusCompleted, shopping.Status)
}

func TestRefillTreatsUnparseableStockAsZero(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"total_quantity":  strPtr("a lot"),
		"refill_quantity": strPtr("20"),
	})

	require.NoError(t, svc.Refill(context.Background(), user.ID, med.ID))

	got := fetchRecord(t, db, med.ID)
	assert.Equal(t, "20", *got.TotalQuantity)
}

func TestSetQuantityResetsAnchorDate(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"total_quantity": strPtr("3"),
		"start_date":     strPtr("2025-03-01"),
	})

	require.NoError(t, svc.SetQuantity(context.Background(), user.ID, med.ID, "50"))

	got := fetchRecord(t, db, med.ID)
	assert.Equal(t, "50", *got.TotalQuantity)
	assert.Equal(t, "2025-03-10", *got.StartDate)
}

func TestMedicineOperationsAreScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	svc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, alice.ID, nil, "Aspirin", nil)

	err := svc.TogglePurchase(context.Background(), bob.ID, med.ID, true)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}
