package service

import (
	"context"
	"net/http"
	"testing"

	"anoa.com/homeboard/internal/dto"
	"anoa.com/homeboard/internal/model"
	"anoa.com/homeboard/internal/repository"
	"anoa.com/homeboard/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRecordService(db *gorm.DB, today string) *recordService {
	return &recordService{
		recordRepo: repository.NewRecordRepository(db),
		personRepo: repository.NewPersonRepository(db),
		now:        fixedClock(today),
	}
}

func TestCreateMedicineAppliesDefaults(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestRecordService(db, "2025-03-10")

	rec, err := svc.Create(context.Background(), user.ID, dto.CreateRecordRequest{
		Category: "medicine",
		Content:  "Aspirin",
	})
	require.NoError(t, err)

	assert.Equal(t, "5", *rec.ReminderThreshold)
	assert.Equal(t, "2025-03-10", *rec.StartDate)
	assert.Equal(t, model.StatusPending, rec.Status)
}

func TestCreateClothesRequiresPerson(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	svc := newTestRecordService(db, "2025-03-10")

	_, err := svc.Create(context.Background(), user.ID, dto.CreateRecordRequest{
		Category: "clothes",
		Content:  "blue coat",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

func TestCreateRejectsForeignPerson(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	person := createTestPerson(t, db, bob.ID, "Bob junior")
	svc := newTestRecordService(db, "2025-03-10")

	pid := person.ID.String()
	_, err := svc.Create(context.Background(), alice.ID, dto.CreateRecordRequest{
		Category: "clothes",
		Content:  "red scarf",
		PersonID: &pid,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}

func TestUpdateStatusRefillsMedicineOnCompletion(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	recSvc := newTestRecordService(db, "2025-03-10")
	medSvc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"total_quantity":  strPtr("3"),
		"refill_quantity": strPtr("20"),
		"start_date":      strPtr("2025-03-10"),
	})
	require.NoError(t, medSvc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	var shopping model.Record
	require.NoError(t, db.First(&shopping, "source_record_id = ?", med.ID).Error)

	require.NoError(t, recSvc.UpdateStatus(context.Background(), user.ID, shopping.ID, model.StatusCompleted))

	gotMed := fetchRecord(t, db, med.ID)
	assert.Equal(t, "23", *gotMed.TotalQuantity)
	assert.False(t, gotMed.NeedsPurchase)
	assert.Equal(t, model.StatusCompleted, fetchRecord(t, db, shopping.ID).Status)
}

func TestUpdateStatusReopeningReversesRefill(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	recSvc := newTestRecordService(db, "2025-03-10")
	medSvc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"total_quantity":  strPtr("3"),
		"refill_quantity": strPtr("20"),
		"start_date":      strPtr("2025-03-10"),
	})
	require.NoError(t, medSvc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	var shopping model.Record
	require.NoError(t, db.First(&shopping, "source_record_id = ?", med.ID).Error)

	require.NoError(t, recSvc.UpdateStatus(context.Background(), user.ID, shopping.ID, model.StatusCompleted))
	require.NoError(t, recSvc.UpdateStatus(context.Background(), user.ID, shopping.ID, model.StatusPending))

	gotMed := fetchRecord(t, db, med.ID)
	assert.Equal(t, "3", *gotMed.TotalQuantity)
	assert.True(t, gotMed.NeedsPurchase)
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	recSvc := newTestRecordService(db, "2025-03-10")
	medSvc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"total_quantity":  strPtr("3"),
		"refill_quantity": strPtr("20"),
	})
	require.NoError(t, medSvc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	var shopping model.Record
	require.NoError(t, db.First(&shopping, "source_record_id = ?", med.ID).Error)

	// Re-applying pending must not run the reversal math.
	require.NoError(t, recSvc.UpdateStatus(context.Background(), user.ID, shopping.ID, model.StatusPending))

	gotMed := fetchRecord(t, db, med.ID)
	assert.Equal(t, "3", *gotMed.TotalQuantity)
}

func TestDeleteMedicineRemovesGeneratedShopping(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	recSvc := newTestRecordService(db, "2025-03-10")
	medSvc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"refill_quantity": strPtr("20"),
	})
	require.NoError(t, medSvc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	require.NoError(t, recSvc.Delete(context.Background(), user.ID, med.ID))

	var count int64
	require.NoError(t, db.Model(&model.Record{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDeleteLinkedShoppingClearsPurchaseFlag(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	recSvc := newTestRecordService(db, "2025-03-10")
	medSvc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"refill_quantity": strPtr("20"),
	})
	require.NoError(t, medSvc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	var shopping model.Record
	require.NoError(t, db.First(&shopping, "source_record_id = ?", med.ID).Error)

	require.NoError(t, recSvc.Delete(context.Background(), user.ID, shopping.ID))

	gotMed := fetchRecord(t, db, med.ID)
	assert.False(t, gotMed.NeedsPurchase)
}

func TestDeleteCompletedLinkedRowKeepsPurchaseFlag(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	recSvc := newTestRecordService(db, "2025-03-10")
	medSvc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"total_quantity":  strPtr("3"),
		"refill_quantity": strPtr("20"),
		"start_date":      strPtr("2025-03-10"),
	})
	require.NoError(t, medSvc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	var stale model.Record
	require.NoError(t, db.First(&stale, "source_record_id = ?", med.ID).Error)
	require.NoError(t, recSvc.UpdateStatus(context.Background(), user.ID, stale.ID, model.StatusCompleted))

	// Flag it again; a fresh pending row appears next to the completed one.
	require.NoError(t, medSvc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	require.NoError(t, recSvc.Delete(context.Background(), user.ID, stale.ID))

	gotMed := fetchRecord(t, db, med.ID)
	assert.True(t, gotMed.NeedsPurchase)

	var pending int64
	require.NoError(t, db.Model(&model.Record{}).
		Where("source_record_id = ? AND status = ?", med.ID, model.StatusPending).
		Count(&pending).Error)
	assert.Equal(t, int64(1), pending)
}

func TestReopeningStaleCompletedLinkedRowIsConflict(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	recSvc := newTestRecordService(db, "2025-03-10")
	medSvc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"total_quantity":  strPtr("3"),
		"refill_quantity": strPtr("20"),
		"start_date":      strPtr("2025-03-10"),
	})
	require.NoError(t, medSvc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	var stale model.Record
	require.NoError(t, db.First(&stale, "source_record_id = ?", med.ID).Error)
	require.NoError(t, recSvc.UpdateStatus(context.Background(), user.ID, stale.ID, model.StatusCompleted))
	require.NoError(t, medSvc.TogglePurchase(context.Background(), user.ID, med.ID, true))

	err := recSvc.UpdateStatus(context.Background(), user.ID, stale.ID, model.StatusPending)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))

	// Nothing moved: the row stays completed and the refill stands.
	assert.Equal(t, model.StatusCompleted, fetchRecord(t, db, stale.ID).Status)
	gotMed := fetchRecord(t, db, med.ID)
	assert.Equal(t, "23", *gotMed.TotalQuantity)
	assert.True(t, gotMed.NeedsPurchase)
}

func TestClearShoppingResetsPurchaseFlags(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	recSvc := newTestRecordService(db, "2025-03-10")
	medSvc := newTestMedicineService(db, "2025-03-10")

	med := createMedicine(t, db, user.ID, nil, "Aspirin", map[string]*string{
		"refill_quantity": strPtr("20"),
	})
	require.NoError(t, medSvc.TogglePurchase(context.Background(), user.ID, med.ID, true))
	createTestRecord(t, db, &model.Record{
		UserID:   user.ID,
		Category: model.CategoryShopping,
		Content:  "milk",
	})

	require.NoError(t, recSvc.ClearShopping(context.Background(), user.ID))

	var count int64
	require.NoError(t, db.Model(&model.Record{}).
		Where("user_id = ? AND category = ?", user.ID, model.CategoryShopping).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)

	gotMed := fetchRecord(t, db, med.ID)
	assert.False(t, gotMed.NeedsPurchase)
}

func TestListClothesGroupsByPerson(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	zoe := createTestPerson(t, db, user.ID, "Zoe")
	amy := createTestPerson(t, db, user.ID, "Amy")
	svc := newTestRecordService(db, "2025-03-10")

	createTestRecord(t, db, &model.Record{
		UserID: user.ID, PersonID: &zoe.ID,
		Category: model.CategoryClothes, Content: "coat",
	})
	createTestRecord(t, db, &model.Record{
		UserID: user.ID, PersonID: &amy.ID,
		Category: model.CategoryClothes, Content: "scarf",
	})
	createTestRecord(t, db, &model.Record{
		UserID: user.ID, PersonID: &amy.ID,
		Category: model.CategoryClothes, Content: "boots",
	})

	groups, err := svc.ListClothes(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Amy", groups[0].PersonName)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "Zoe", groups[1].PersonName)
	assert.Len(t, groups[1].Items, 1)
}

func TestDeleteIsScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	svc := newTestRecordService(db, "2025-03-10")

	rec := createTestRecord(t, db, &model.Record{
		UserID:   alice.ID,
		Category: model.CategoryGeneral,
		Content:  "private note",
	})

	err := svc.Delete(context.Background(), bob.ID, rec.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))

	var count int64
	require.NoError(t, db.Model(&model.Record{}).Where("id = ?", rec.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
