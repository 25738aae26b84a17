package apiio_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oceandata/hydromon/internal/ent/store"
	"github.com/oceandata/hydromon/internal/io/apiio"
	"github.com/oceandata/hydromon/pkg/config"
	"github.com/oceandata/hydromon/pkg/ent/model"
)

// mockStore is an in-memory store.Store for handler tests.
type mockStore struct {
	users      map[uint]*model.User
	nextUserID uint

	hydro      []model.HydroData
	fish       []model.Fish
	lastFilter store.HydroFilter

	hydroChunks int
	failInsert  bool
}

func newMockStore() *mockStore {
	return &mockStore{users: map[uint]*model.User{}, nextUserID: 1}
}

func (m *mockStore) addUser(name, pass, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
	u := &model.User{
		ID:           m.nextUserID,
		Username:     name,
		PasswordHash: string(hash),
		Role:         role,
	}
	m.users[u.ID] = u
	m.nextUserID++
	return u
}

func (m *mockStore) UserByID(id uint) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) UserByUsername(name string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) Users() ([]model.User, error) {
	var res []model.User
	for id := uint(1); id < m.nextUserID; id++ {
		if u, ok := m.users[id]; ok {
			res = append(res, *u)
		}
	}
	return res, nil
}

func (m *mockStore) CreateUser(u *model.User) error {
	u.ID = m.nextUserID
	m.nextUserID++
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockStore) UpdateUser(u *model.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockStore) DeleteUser(u *model.User) error {
	delete(m.users, u.ID)
	return nil
}

func (m *mockStore) AdminCount() (int, error) {
	var count int
	for _, u := range m.users {
		if u.Role == "admin" {
			count++
		}
	}
	return count, nil
}

func (m *mockStore) HydroData(f store.HydroFilter) ([]model.HydroData, error) {
	m.lastFilter = f
	return m.hydro, nil
}

func (m *mockStore) InsertHydroData(batch []model.HydroData) error {
	if m.failInsert {
		return fmt.Errorf("insert failed")
	}
	m.hydro = append(m.hydro, batch...)
	m.hydroChunks++
	return nil
}

func (m *mockStore) Fish() ([]model.Fish, error) {
	return m.fish, nil
}

func (m *mockStore) InsertFish(batch []model.Fish) error {
	if m.failInsert {
		return fmt.Errorf("insert failed")
	}
	m.fish = append(m.fish, batch...)
	return nil
}

func (m *mockStore) Close() error { return nil }

func testServer(ms *mockStore) *apiio.Server {
	cfg := config.New()
	cfg.ChunkSize = 2
	return apiio.New(cfg, ms, apiio.NewMetricsForTesting())
}

func doJSON(
	t *testing.T, srv *apiio.Server, method, path string, body any,
) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	res := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	}
	return w, res
}

func TestLogin(t *testing.T) {
	ms := newMockStore()
	ms.addUser("admin", "admin123", "admin")
	srv := testServer(ms)

	w, res := doJSON(t, srv, "POST", "/api/login",
		map[string]string{"username": "admin", "password": "admin123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", res["message"])
	assert.Equal(t, "admin", res["role"])

	w, res = doJSON(t, srv, "POST", "/api/login",
		map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", res["message"])

	w, _ = doJSON(t, srv, "POST", "/api/login",
		map[string]string{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister(t *testing.T) {
	ms := newMockStore()
	srv := testServer(ms)

	w, res := doJSON(t, srv, "POST", "/api/register",
		map[string]string{"username": "alice", "password": "secret"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "alice", res["username"])
	assert.Equal(t, "user", res["role"])

	// password must be stored hashed
	u, err := ms.UserByUsername("alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(u.PasswordHash), []byte("secret")))

	w, res = doJSON(t, srv, "POST", "/api/register",
		map[string]string{"username": "alice", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already exists", res["message"])

	w, _ = doJSON(t, srv, "POST", "/api/register",
		map[string]string{"username": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersCRUD(t *testing.T) {
	ms := newMockStore()
	admin := ms.addUser("admin", "admin123", "admin")
	bob := ms.addUser("bob", "pass", "user")
	srv := testServer(ms)

	w, res := doJSON(t, srv, "GET", "/api/users", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, res["users"], 2)

	w, res = doJSON(t, srv, "GET",
		fmt.Sprintf("/api/users/%d", bob.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob", res["username"])
	_, leaked := res["PasswordHash"]
	assert.False(t, leaked)

	w, _ = doJSON(t, srv, "GET", "/api/users/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// rename collides with an existing account
	w, _ = doJSON(t, srv, "PUT",
		fmt.Sprintf("/api/users/%d", bob.ID),
		map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// regular update works
	w, _ = doJSON(t, srv, "PUT",
		fmt.Sprintf("/api/users/%d", bob.ID),
		map[string]string{"username": "robert", "password": "newpass"})
	assert.Equal(t, http.StatusOK, w.Code)
	u, err := ms.UserByID(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "robert", u.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(u.PasswordHash), []byte("newpass")))

	// the only admin cannot be demoted or deleted
	w, _ = doJSON(t, srv, "PUT",
		fmt.Sprintf("/api/users/%d", admin.ID),
		map[string]string{"role": "user"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doJSON(t, srv, "DELETE",
		fmt.Sprintf("/api/users/%d", admin.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// with a second admin both operations pass
	ms.addUser("root", "pw", "admin")
	w, _ = doJSON(t, srv, "PUT",
		fmt.Sprintf("/api/users/%d", admin.ID),
		map[string]string{"role": "user"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, srv, "DELETE",
		fmt.Sprintf("/api/users/%d", bob.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	_, err = ms.UserByID(bob.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHydroDataQuery(t *testing.T) {
	ms := newMockStore()
	ph := 7.8
	ms.hydro = []model.HydroData{{
		Location: "浙江省", Basin: "钱塘江", SectionName: "兰溪断面",
		Date: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		PH:   &ph,
	}}
	srv := testServer(ms)

	w, res := doJSON(t, srv, "GET",
		"/api/hydrodata?basin=%E9%92%B1%E5%A1%98%E6%B1%9F&date=2023-04-01",
		nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), res["count"])

	assert.Equal(t, "钱塘江", ms.lastFilter.Basin)
	require.NotNil(t, ms.lastFilter.Date)
	assert.Equal(t,
		time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), *ms.lastFilter.Date)

	w, _ = doJSON(t, srv, "GET", "/api/hydrodata?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, srv, "GET", "/api/hydrodata?id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFishQuery(t *testing.T) {
	ms := newMockStore()
	ms.fish = []model.Fish{{Species: "Bream", Weight: 242}}
	srv := testServer(ms)

	w, res := doJSON(t, srv, "GET", "/api/fish", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), res["count"])
}

func multipartCSV(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func importCSV(
	t *testing.T, srv *apiio.Server, path, content string,
) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	body, ctype := multipartCSV(t, content)
	req := httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	res := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w, res
}

const combinedHeader = "province,basin,section_name,observed_at," +
	"water_quality_category,water_temperature,pH,dissolved_oxygen," +
	"conductivity,turbidity,permanganate_index,ammonia_nitrogen," +
	"total_phosphorus,total_nitrogen,chlorophyll,algae_density," +
	"site_condition\n"

func combinedRow(section string) string {
	return "浙江省,钱塘江," + section + ",2023-04-01 08:00:00,Ⅱ," +
		"18.2,7.8,null,312,5.1,2.3,0.25,0.04,1.2,null,null,正常\n"
}

func TestImportHydroData(t *testing.T) {
	ms := newMockStore()
	srv := testServer(ms)

	content := combinedHeader +
		combinedRow("断面一") + combinedRow("断面二") + combinedRow("断面三")
	w, res := importCSV(t, srv, "/api/import/hydrodata", content)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Import successful", res["message"])
	assert.Equal(t, float64(3), res["imported_count"])
	assert.Equal(t, float64(3), res["total_rows"])

	// ChunkSize is 2, three rows arrive as two commits
	assert.Equal(t, 2, ms.hydroChunks)
	require.Len(t, ms.hydro, 3)
	assert.Equal(t, "钱塘江", ms.hydro[0].Basin)
	assert.NotEmpty(t, ms.hydro[0].SiteID)
	// the same section always maps to the same site
	more := combinedHeader + combinedRow("断面一")
	_, _ = importCSV(t, srv, "/api/import/hydrodata", more)
	assert.Equal(t, ms.hydro[0].SiteID, ms.hydro[3].SiteID)
}

func TestImportHydroDataBadRow(t *testing.T) {
	ms := newMockStore()
	srv := testServer(ms)

	badRow := "null,钱塘江,断面,2023-04-01 08:00:00,Ⅱ," +
		"18.2,7.8,null,312,5.1,2.3,0.25,0.04,1.2,null,null,正常\n"
	content := combinedHeader +
		combinedRow("断面一") + combinedRow("断面二") + badRow
	w, res := importCSV(t, srv, "/api/import/hydrodata", content)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Import failed", res["message"])
	assert.Equal(t, "missing province", res["error"])
	assert.Equal(t, float64(3), res["row"])
	assert.Equal(t, "null", res["row_data"].([]any)[0])

	// the first chunk was already committed and stays
	assert.Equal(t, float64(2), res["imported_count"])
	assert.Len(t, ms.hydro, 2)
}

func TestImportHydroDataNoFile(t *testing.T) {
	srv := testServer(newMockStore())

	req := httptest.NewRequest(
		"POST", "/api/import/hydrodata", strings.NewReader("no form"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportFish(t *testing.T) {
	ms := newMockStore()
	srv := testServer(ms)

	content := "Species,Weight(g),Length1(cm),Length2(cm),Length3(cm)," +
		"Height(cm),Width(cm)\n" +
		"Bream,242,23.2,25.4,30,11.52,4.02\n" +
		"Roach,160,20.5,22.5,25.3,7.03,3.82\n"
	w, res := importCSV(t, srv, "/api/import/fish", content)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), res["imported_count"])
	require.Len(t, ms.fish, 2)
	assert.Equal(t, "Bream", ms.fish[0].Species)
}

func TestImportFishBadRow(t *testing.T) {
	ms := newMockStore()
	srv := testServer(ms)

	content := "Species,Weight(g),Length1(cm),Length2(cm),Length3(cm)," +
		"Height(cm),Width(cm)\n" +
		"Bream,not-a-number,23.2,25.4,30,11.52,4.02\n"
	w, res := importCSV(t, srv, "/api/import/fish", content)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, float64(1), res["row"])
	assert.Empty(t, ms.fish)
}

func TestHealthz(t *testing.T) {
	srv := testServer(newMockStore())
	w, res := doJSON(t, srv, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", res["status"])
}

func TestMonitoringData(t *testing.T) {
	srv := testServer(newMockStore())
	w, res := doJSON(t, srv, "GET", "/api/monitoring-data", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	ph, ok := res["ph"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, ph, 6.5)
	assert.LessOrEqual(t, ph, 8.5)
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(newMockStore())
	req := httptest.NewRequest("OPTIONS", "/api/login", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
