package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/timetable-api/internal/dto"
	"github.com/schoolcore/timetable-api/internal/middleware"
	"github.com/schoolcore/timetable-api/internal/models"
	appErrors "github.com/schoolcore/timetable-api/pkg/errors"
)

type timetableServiceMock struct {
	validateSlotResp dto.ValidationResult
	validateWeekResp dto.ValidationResult
	commitTimetable  *models.Timetable
	commitResult     dto.ValidationResult
	commitErr        error
	activeResp       *dto.TimetableDetail
	activeErr        error
	availabilityResp dto.TeacherAvailabilityResponse
	conflictsResp    []models.TeacherDayConflict

	lastCommitReq       dto.CommitWeekRequest
	lastAvailabilityReq dto.TeacherAvailabilityRequest
	validateWeekCalled  bool
	commitCalled        bool
}

func (m *timetableServiceMock) ValidateSlot(_ context.Context, _ dto.ValidateSlotRequest) (dto.ValidationResult, error) {
	return m.validateSlotResp, nil
}

func (m *timetableServiceMock) ValidateWeek(_ context.Context, _ dto.ValidateWeekRequest) (dto.ValidationResult, error) {
	m.validateWeekCalled = true
	return m.validateWeekResp, nil
}

func (m *timetableServiceMock) CommitWeek(_ context.Context, req dto.CommitWeekRequest) (*models.Timetable, dto.ValidationResult, error) {
	m.commitCalled = true
	m.lastCommitReq = req
	return m.commitTimetable, m.commitResult, m.commitErr
}

func (m *timetableServiceMock) GetActive(_ context.Context, _ string) (*dto.TimetableDetail, error) {
	return m.activeResp, m.activeErr
}

func (m *timetableServiceMock) GetByID(_ context.Context, _ string) (*dto.TimetableDetail, error) {
	return m.activeResp, m.activeErr
}

func (m *timetableServiceMock) TeacherWeek(_ context.Context, teacherID string) (*dto.TeacherWeekResponse, error) {
	return &dto.TeacherWeekResponse{TeacherID: teacherID}, nil
}

func (m *timetableServiceMock) TeacherAvailability(_ context.Context, req dto.TeacherAvailabilityRequest) (dto.TeacherAvailabilityResponse, error) {
	m.lastAvailabilityReq = req
	return m.availabilityResp, nil
}

func (m *timetableServiceMock) TeacherConflicts(_ context.Context, _ string) ([]models.TeacherDayConflict, error) {
	return m.conflictsResp, nil
}

func schedulerClaims() *models.TokenClaims {
	return &models.TokenClaims{UserID: "user-1", Role: "scheduler"}
}

func postJSONContext(t *testing.T, w *httptest.ResponseRecorder, path string, payload interface{}) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c
}

func weekPayload() dto.CommitWeekRequest {
	return dto.CommitWeekRequest{
		ClassID:      "class-1",
		AcademicYear: "2026",
		Term:         "1",
		Slots: []dto.SlotCandidate{
			{Day: "MONDAY", Period: 1, StartTime: "07:40", EndTime: "08:20"},
		},
	}
}

func TestTimetableHandlerValidateWeek(t *testing.T) {
	mockSvc := &timetableServiceMock{validateWeekResp: dto.ValidationResult{IsValid: true}}
	handler := &TimetableHandler{service: mockSvc}

	w := httptest.NewRecorder()
	c := postJSONContext(t, w, "/timetables/validate-week", dto.ValidateWeekRequest{
		ClassID: "class-1",
		Slots:   weekPayload().Slots,
	})

	handler.ValidateWeek(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.validateWeekCalled)
}

func TestTimetableHandlerValidateWeekInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/validate-week", bytes.NewBufferString(`{"classId":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.ValidateWeek(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerValidateWeekSlotLimit(t *testing.T) {
	mockSvc := &timetableServiceMock{}
	handler := &TimetableHandler{service: mockSvc}

	payload := dto.ValidateWeekRequest{ClassID: "class-1"}
	for i := 0; i < maxWeekSlots+1; i++ {
		payload.Slots = append(payload.Slots, dto.SlotCandidate{Day: "MONDAY", Period: 1, StartTime: "07:40", EndTime: "08:20"})
	}

	w := httptest.NewRecorder()
	c := postJSONContext(t, w, "/timetables/validate-week", payload)

	handler.ValidateWeek(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.validateWeekCalled)
}

func TestTimetableHandlerCommitWeekRequiresAuth(t *testing.T) {
	mockSvc := &timetableServiceMock{}
	handler := &TimetableHandler{service: mockSvc}

	w := httptest.NewRecorder()
	c := postJSONContext(t, w, "/timetables/commit", weekPayload())

	handler.CommitWeek(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, mockSvc.commitCalled)
}

func TestTimetableHandlerCommitWeekRejectsRole(t *testing.T) {
	mockSvc := &timetableServiceMock{}
	handler := &TimetableHandler{service: mockSvc}

	w := httptest.NewRecorder()
	c := postJSONContext(t, w, "/timetables/commit", weekPayload())
	c.Set(middleware.ContextUserKey, &models.TokenClaims{UserID: "user-2", Role: "teacher"})

	handler.CommitWeek(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, mockSvc.commitCalled)
}

func TestTimetableHandlerCommitWeekSuccess(t *testing.T) {
	mockSvc := &timetableServiceMock{
		commitTimetable: &models.Timetable{ID: "tt-1", ClassID: "class-1", Status: models.TimetableStatusActive},
		commitResult:    dto.ValidationResult{IsValid: true},
	}
	handler := &TimetableHandler{service: mockSvc}

	w := httptest.NewRecorder()
	c := postJSONContext(t, w, "/timetables/commit", weekPayload())
	c.Set(middleware.ContextUserKey, schedulerClaims())

	handler.CommitWeek(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "class-1", mockSvc.lastCommitReq.ClassID)
}

func TestTimetableHandlerCommitWeekValidationFailure(t *testing.T) {
	mockSvc := &timetableServiceMock{
		commitResult: dto.ValidationResult{IsValid: false, Errors: []string{"Duplicate slot found: MONDAY Period 1"}},
		commitErr:    appErrors.Clone(appErrors.ErrInvalidTimetable, "timetable failed validation"),
	}
	handler := &TimetableHandler{service: mockSvc}

	w := httptest.NewRecorder()
	c := postJSONContext(t, w, "/timetables/commit", weekPayload())
	c.Set(middleware.ContextUserKey, schedulerClaims())

	handler.CommitWeek(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var envelope struct {
		Data dto.ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.IsValid)
	assert.Contains(t, envelope.Data.Errors, "Duplicate slot found: MONDAY Period 1")
}

func TestTimetableHandlerGetActiveNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{activeErr: appErrors.Clone(appErrors.ErrNotFound, "no active timetable for class")}
	handler := &TimetableHandler{service: mockSvc}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/classes/class-1/timetable", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "classId", Value: "class-1"}}

	handler.GetActive(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableHandlerTeacherAvailability(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{availabilityResp: dto.TeacherAvailabilityResponse{IsAvailable: true}}
	handler := &TimetableHandler{service: mockSvc}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/teachers/teacher-1/availability?day=WEDNESDAY&period=3", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "teacher-1"}}

	handler.TeacherAvailability(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teacher-1", mockSvc.lastAvailabilityReq.TeacherID)
	assert.Equal(t, "WEDNESDAY", mockSvc.lastAvailabilityReq.Day)
	assert.Equal(t, 3, mockSvc.lastAvailabilityReq.Period)
}
