package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/auth"
	"github.com/DeanLuus22021994/recruit/internal/candidates"
	"github.com/DeanLuus22021994/recruit/internal/files"
	"github.com/DeanLuus22021994/recruit/internal/handlers"
	"github.com/DeanLuus22021994/recruit/internal/interviews"
	"github.com/DeanLuus22021994/recruit/internal/jobs"
	"github.com/DeanLuus22021994/recruit/internal/mail"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/profiles"
	"github.com/DeanLuus22021994/recruit/internal/storagetest"
)

type env struct {
	db       *gorm.DB
	router   http.Handler
	sessions *auth.MemoryStore
	tokens   *accounts.TokenSigner
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := storagetest.Open(t)
	store, err := files.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	sessions := auth.NewMemoryStore(time.Hour)
	tokens := accounts.NewTokenSigner("test-secret")
	prof := profiles.NewService(db, store)

	h := &handlers.Handler{
		DB:         db,
		Apply:      &candidates.Apply{DB: db, Tokens: tokens, Profiles: prof},
		Profiles:   prof,
		Jobs:       jobs.NewService(db),
		Interviews: interviews.NewService(db),
		Mail:       mail.NewDispatcher(db, mail.LogTransport{}, "team@example.com"),
		Sessions:   sessions,
		Password:   &auth.Password{DB: db, Sessions: sessions},
	}
	return env{db: db, router: handlers.NewRouter(h), sessions: sessions, tokens: tokens}
}

func (e env) serve(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e env) login(t *testing.T, user models.User) *http.Cookie {
	t.Helper()
	sid, err := e.sessions.Create(context.Background(), user.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookie, Value: sid}
}

func (e env) staff(t *testing.T, email string) models.User {
	t.Helper()
	user := storagetest.CreateUser(t, e.db, email)
	require.NoError(t, e.db.Model(&user).Update("is_staff", true).Error)
	user.IsStaff = true
	return user
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

type upload struct {
	field, name string
	data        []byte
}

func postMultipart(t *testing.T, target string, fields map[string]string, uploads ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, u := range uploads {
		fw, err := mw.CreateFormFile(u.field, u.name)
		require.NoError(t, err)
		_, err = fw.Write(u.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 150, 150))))
	return buf.Bytes()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// candidate creates a user with a stamped candidate record.
func (e env) candidate(t *testing.T, email string) (models.User, models.Candidate) {
	t.Helper()
	user := storagetest.CreateUser(t, e.db, email)
	c := models.Candidate{UserID: user.ID, BirthYear: "1990", Gender: models.GenderFemale, Education: "BA"}
	require.NoError(t, e.db.Create(&c).Error)
	require.NoError(t, accounts.OnRoleRecordCreated(context.Background(), e.db, user.ID, models.RoleCandidate))
	return user, c
}

func (e env) job(t *testing.T) (models.Job, models.Employer, models.Recruiter, models.User) {
	t.Helper()
	empUser := storagetest.CreateUser(t, e.db, "employer@example.com")
	employer := models.Employer{UserID: empUser.ID, NameEnglish: "Acme"}
	require.NoError(t, e.db.Create(&employer).Error)
	require.NoError(t, accounts.OnRoleRecordCreated(context.Background(), e.db, empUser.ID, models.RoleEmployer))
	recUser := storagetest.CreateUser(t, e.db, "recruiter@example.com")
	recruiter := models.Recruiter{UserID: recUser.ID}
	require.NoError(t, e.db.Create(&recruiter).Error)

	job := models.Job{
		EmployerID:         employer.ID,
		RecruiterID:        recruiter.ID,
		Title:              "English Teacher",
		CompensationType:   models.CompensationMonthly,
		CompensationAmount: "2000",
	}
	require.NoError(t, e.db.Create(&job).Error)
	return job, employer, recruiter, empUser
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rec := e.serve(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestApplyOverHTTP(t *testing.T) {
	e := newEnv(t)

	rec := e.serve(httptest.NewRequest(http.MethodGet, "/candidates/apply/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["step"])

	rec = e.serve(postForm("/candidates/apply/", url.Values{
		"first_name":  {"Ana"},
		"last_name":   {"Reyes"},
		"email":       {"Ana@Example.com"},
		"citizenship": {"ph"},
		"timezone":    {"Asia/Manila"},
	}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	next, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, candidates.ApplyPath, next.Path)
	key := next.Query().Get("key")
	require.NotEmpty(t, key)

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/candidates/apply/?key="+key, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	form := decode(t, rec)
	assert.EqualValues(t, 2, form["step"])
	assert.Equal(t, "ana@example.com", form["email"])

	rec = e.serve(postMultipart(t, "/candidates/apply/?key="+url.QueryEscape(key),
		map[string]string{"birth_year": "1996", "gender": models.GenderFemale, "education": "Bachelors"},
		upload{"image", "me.png", pngBytes(t)},
		upload{"resume", "cv.txt", []byte("ten years of teaching")},
	))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/candidates/apply/success/?key="+key, rec.Header().Get("Location"))
	assert.EqualValues(t, 1, count(t, e.db, &models.Candidate{}))
	assert.EqualValues(t, 1, count(t, e.db, &models.CandidateDocument{}))

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/candidates/apply/success/?key="+key, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	links := decode(t, rec)
	assert.Equal(t, "/jobs/?key="+key, links["jobs_url"])
}

func TestApplyRejectsBadKey(t *testing.T) {
	e := newEnv(t)

	rec := e.serve(httptest.NewRequest(http.MethodGet, "/candidates/apply/?key=forged", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.serve(postMultipart(t, "/candidates/apply/?key=forged",
		map[string]string{"birth_year": "1996", "gender": models.GenderFemale, "education": "Bachelors"},
		upload{"image", "me.png", pngBytes(t)},
		upload{"resume", "cv.txt", []byte("cv")},
	))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, count(t, e.db, &models.Candidate{}))

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/candidates/apply/success/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApplyStep1Validation(t *testing.T) {
	e := newEnv(t)
	rec := e.serve(postForm("/candidates/apply/", url.Values{"first_name": {"Ana"}, "email": {"not-an-email"}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs, ok := decode(t, rec)["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "last_name")
	assert.Zero(t, count(t, e.db, &models.User{}))
}

func TestJobsForCandidate(t *testing.T) {
	e := newEnv(t)
	user, c := e.candidate(t, "cand@example.com")
	job, _, _, _ := e.job(t)
	key, err := e.tokens.Generate(user)
	require.NoError(t, err)

	rec := e.serve(httptest.NewRequest(http.MethodGet, "/jobs/?key="+url.QueryEscape(key), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var listing struct {
		Jobs []jobs.Listing `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Jobs, 1)
	assert.True(t, listing.Jobs[0].Eligible)
	assert.False(t, listing.Jobs[0].Requested)

	rec = e.serve(postForm("/jobs/", url.Values{"key": {key}, "requested_jobs": {job.ID, job.ID}}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/jobs/?key="+url.QueryEscape(key), rec.Header().Get("Location"))

	var reqs []models.InterviewRequest
	require.NoError(t, e.db.Find(&reqs).Error)
	require.Len(t, reqs, 1)
	assert.Equal(t, c.ID, reqs[0].CandidateID)

	rec = e.serve(postForm("/jobs/", url.Values{"key": {key}, "requested_jobs": {"no-such-job"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/jobs/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetJob(t *testing.T) {
	e := newEnv(t)
	job, _, _, _ := e.job(t)

	rec := e.serve(httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID+"/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "English Teacher", decode(t, rec)["title"])

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/jobs/missing/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailability(t *testing.T) {
	e := newEnv(t)
	user := storagetest.CreateUser(t, e.db, "ana@example.com")
	other := storagetest.CreateUser(t, e.db, "bo@example.com")
	cookie := e.login(t, user)
	path := "/availability/" + user.ID + "/"

	rec := e.serve(postForm(path, url.Values{
		"availability": {`[{"day":"1","start":"09:00","end":"12:00"},{"day":3,"start":"13:00","end":"17:00"}]`},
		"timezone":     {`"Asia/Manila"`},
	}), cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, interviews.MessageTimezoneUpdated, decode(t, rec)["message"])

	rec = e.serve(httptest.NewRequest(http.MethodGet, path, nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	encoded, ok := decode(t, rec)["availability"].(string)
	require.True(t, ok, "availability is a JSON string")
	var windows []interviews.Window
	require.NoError(t, json.Unmarshal([]byte(encoded), &windows))
	assert.Equal(t, []interviews.Window{
		{Day: 1, Start: "09:00", End: "12:00"},
		{Day: 3, Start: "13:00", End: "17:00"},
	}, windows)

	// Invalid windows leave the schedule as it was.
	rec = e.serve(postForm(path, url.Values{"availability": {`[{"day":"9","start":"09:00","end":"12:00"}]`}}), cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.EqualValues(t, 2, count(t, e.db, &models.Available{}))

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/availability/"+other.ID+"/", nil), cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.serve(httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExclusions(t *testing.T) {
	e := newEnv(t)
	user := storagetest.CreateUser(t, e.db, "ana@example.com")
	cookie := e.login(t, user)
	path := "/exclusions/" + user.ID + "/"

	rec := e.serve(postForm(path, url.Values{"date": {"2024-07-04"}}), cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = e.serve(postForm(path, url.Values{"date": {"2024-07-01"}}), cookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.serve(httptest.NewRequest(http.MethodGet, path, nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"2024-07-01", "2024-07-04"}, decode(t, rec)["exclusions"])

	rec = e.serve(httptest.NewRequest(http.MethodDelete, path+"?date=2024-07-01", nil), cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.serve(httptest.NewRequest(http.MethodDelete, path+"?date=2024-07-01", nil), cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.serve(postForm(path, url.Values{"date": {"July 4"}}), cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInterviewRequestFlow(t *testing.T) {
	e := newEnv(t)
	candUser, c := e.candidate(t, "cand@example.com")
	job, _, _, empUser := e.job(t)
	req := models.InterviewRequest{CandidateID: c.ID, JobID: job.ID}
	require.NoError(t, e.db.Create(&req).Error)

	candCookie := e.login(t, candUser)
	empCookie := e.login(t, empUser)

	rec := e.serve(httptest.NewRequest(http.MethodGet, "/interviews/", nil), candCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["requests"], 1)

	respond := "/interviews/" + jsonID(req.ID) + "/respond"
	rec = e.serve(postForm(respond, url.Values{"accepted": {"true"}}), candCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode(t, rec)["invitation"])

	rec = e.serve(postForm(respond, url.Values{"accepted": {"true"}}), empCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, decode(t, rec)["invitation"])
	assert.EqualValues(t, 1, count(t, e.db, &models.InterviewInvitation{}))

	// Answering again does not create a second invitation.
	rec = e.serve(postForm(respond, url.Values{"accepted": {"true"}}), empCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, count(t, e.db, &models.InterviewInvitation{}))

	rec = e.serve(postForm(respond, url.Values{"accepted": {"maybe"}}), candCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestInterviewListRequiresRole(t *testing.T) {
	e := newEnv(t)
	user := storagetest.CreateUser(t, e.db, "nobody@example.com")

	rec := e.serve(httptest.NewRequest(http.MethodGet, "/interviews/", nil), e.login(t, user))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/interviews/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInvitationStatus(t *testing.T) {
	e := newEnv(t)
	inv := models.InterviewInvitation{ID: "ABCDE", CandidateID: "c", JobID: "j"}
	require.NoError(t, e.db.Create(&inv).Error)
	staff := e.login(t, e.staff(t, "staff@example.com"))
	path := "/interviews/invitations/ABCDE/status"

	rec := e.serve(postForm(path, url.Values{"status": {"1"}}), staff)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.serve(postForm(path, url.Values{"status": {"2"}, "confirmed_time": {"2024-07-01T09:00:00+08:00"}}), staff)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved models.InterviewInvitation
	require.NoError(t, e.db.First(&saved, "id = ?", "ABCDE").Error)
	require.NotNil(t, saved.ConfirmedTime)
	assert.True(t, saved.ConfirmedTime.Equal(time.Date(2024, 7, 1, 1, 0, 0, 0, time.UTC)))

	rec = e.serve(postForm(path, url.Values{"status": {"0"}}), staff)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.serve(postForm(path, url.Values{"status": {"42"}}), staff)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	plain := e.login(t, storagetest.CreateUser(t, e.db, "plain@example.com"))
	rec = e.serve(postForm(path, url.Values{"status": {"3"}}), plain)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInvitationStatusIsScopedToJobRecruiter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job, _, recruiter, _ := e.job(t)
	require.NoError(t, accounts.OnRoleRecordCreated(ctx, e.db, recruiter.UserID, models.RoleRecruiter))
	var owner models.User
	require.NoError(t, e.db.First(&owner, "id = ?", recruiter.UserID).Error)

	otherUser := storagetest.CreateUser(t, e.db, "other-recruiter@example.com")
	other := models.Recruiter{UserID: otherUser.ID}
	require.NoError(t, e.db.Create(&other).Error)
	require.NoError(t, accounts.OnRoleRecordCreated(ctx, e.db, otherUser.ID, models.RoleRecruiter))

	inv := models.InterviewInvitation{ID: "ABCDE", CandidateID: "c", JobID: job.ID}
	require.NoError(t, e.db.Create(&inv).Error)
	path := "/interviews/invitations/ABCDE/status"

	rec := e.serve(postForm(path, url.Values{"status": {"-3"}}), e.login(t, otherUser))
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	var saved models.InterviewInvitation
	require.NoError(t, e.db.First(&saved, "id = ?", "ABCDE").Error)
	assert.Equal(t, int(interviews.StatusOpen), saved.Status)
	assert.True(t, saved.IsActive)

	rec = e.serve(postForm("/interviews/invitations/NOPE1/status", url.Values{"status": {"1"}}), e.login(t, otherUser))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.serve(postForm(path, url.Values{"status": {"1"}}), e.login(t, owner))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, interviews.StatusPendingConfirmation, decode(t, rec)["status"])
}

func TestDashboardAndRecruitersAreStaffOnly(t *testing.T) {
	e := newEnv(t)
	plain := e.login(t, storagetest.CreateUser(t, e.db, "plain@example.com"))
	staff := e.login(t, e.staff(t, "staff@example.com"))

	for _, path := range []string{"/dashboard/", "/recruiters/", "/email/stats"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, e.serve(httptest.NewRequest(http.MethodGet, path, nil)).Code)
			assert.Equal(t, http.StatusForbidden, e.serve(httptest.NewRequest(http.MethodGet, path, nil), plain).Code)
			assert.Equal(t, http.StatusOK, e.serve(httptest.NewRequest(http.MethodGet, path, nil), staff).Code)
		})
	}

	rec := e.serve(httptest.NewRequest(http.MethodGet, "/dashboard/", nil), staff)
	assert.Contains(t, decode(t, rec), "interviews_pending_confirmation")
}

func TestCreateRecruiterForSessionUser(t *testing.T) {
	e := newEnv(t)
	user := storagetest.CreateUser(t, e.db, "rec@example.com")
	cookie := e.login(t, user)

	fields := map[string]string{"phone_number": "555-0100", "location": "Manila", "date_of_birth": "1985-02-03"}
	rec := e.serve(postMultipart(t, "/recruiters/", fields, upload{"image", "me.png", pngBytes(t)}), cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	profile := models.Profile{}
	require.NoError(t, e.db.First(&profile, "user_id = ?", user.ID).Error)
	assert.Equal(t, models.RoleRecruiter, profile.Role)

	rec = e.serve(postMultipart(t, "/recruiters/", fields, upload{"image", "me.png", pngBytes(t)}), cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.serve(postMultipart(t, "/recruiters/", fields))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEmailStatsAndEvents(t *testing.T) {
	e := newEnv(t)
	staff := e.login(t, e.staff(t, "staff@example.com"))
	rows := []models.EmailLog{
		{Recipient: "a@x.io", Sender: "s", Status: models.EmailSent, SendGridMessageID: "m1", SentAt: time.Now().UTC()},
		{Recipient: "b@x.io", Sender: "s", Status: models.EmailSent, SendGridMessageID: "m2", SentAt: time.Now().UTC()},
	}
	require.NoError(t, e.db.Create(&rows).Error)

	body := `[{"email":"a@x.io","event":"delivered","sg_message_id":"m1.filter0","timestamp":1719820800}]`
	rec := e.serve(httptest.NewRequest(http.MethodPost, "/sendgrid/events", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, decode(t, rec)["updated"])

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/email/stats?days=7", nil), staff)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats mail.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 7, stats.PeriodDays)
	assert.EqualValues(t, 2, stats.TotalSent)
	assert.EqualValues(t, 1, stats.Delivered)
	assert.InDelta(t, 50.0, stats.DeliveryRate, 0.001)

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/email/stats?days=-1", nil), staff)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.serve(httptest.NewRequest(http.MethodPost, "/sendgrid/events", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie && c.Value != "" {
			return c
		}
	}
	return nil
}

func TestPasswordSignIn(t *testing.T) {
	e := newEnv(t)
	user := e.staff(t, "staff@example.com")

	rec := e.serve(postForm("/password", url.Values{"password": {"correct horse"}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie := e.login(t, user)
	rec = e.serve(postForm("/password", url.Values{"password": {"short"}}), cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.serve(postForm("/password", url.Values{"password": {"correct horse"}}), cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.serve(postForm("/password", url.Values{"password": {"battery staple"}}), cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "current password is required once set")

	rec = e.serve(postForm("/login/password", url.Values{"email": {"Staff@Example.com"}, "password": {"wrong password"}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(rec))

	rec = e.serve(postForm("/login/password", url.Values{"email": {"Staff@Example.com"}, "password": {"correct horse"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	session := sessionCookie(rec)
	require.NotNil(t, session)

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/dashboard/", nil), session)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/logout", nil), session)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	rec = e.serve(httptest.NewRequest(http.MethodGet, "/dashboard/", nil), session)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
