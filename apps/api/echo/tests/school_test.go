package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/classgroup"
	"github.com/dmorais/escolar/core/lookup"
	"github.com/dmorais/escolar/core/teacher"
	"github.com/dmorais/escolar/core/user"
	testutil "github.com/dmorais/escolar/tests"
)

func Test_lookupApi(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/lookups")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("all tables", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/lookups", getToken(t, admin))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var tables lookup.Tables
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tables))
		require.Len(t, tables.Genders, 6)
		require.Len(t, tables.Races, 6)
		require.Len(t, tables.Disabilities, 6)
	})
}

func Test_teacherApi_crud(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	hero := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, admin)

	var created teacher.Teacher

	t.Run("staff required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/teachers", getToken(t, hero))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("create requires name and email", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/teachers", token, []byte("{}"))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "  Maria Silva ", "email": "maria@test.cd"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/teachers", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.Equal(t, "Maria Silva", created.Name)
		require.NotZero(t, created.ID)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"phone": "11987654321"})
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/v1/teachers/%d", created.ID), token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated teacher.Teacher
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		require.Equal(t, "Maria Silva", updated.Name)
		require.Equal(t, "11987654321", updated.Phone)
	})

	t.Run("delete blocked while courses exist", func(t *testing.T) {
		crs := testutil.CreateCourse(t, crsRepo, "Algebra", created.ID)

		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/teachers/%d", created.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), "teacher still has courses attached")

		require.NoError(t, crsRepo.DeleteCourse(req.Context(), crs.ID))
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/teachers/%d", created.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	})

	t.Run("retrieve deleted", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/teachers/%d", created.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})
}

func Test_classGroupApi_crud(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	t.Run("invalid shift", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "Group A", "shift": "midnight"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/class-groups", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), "shift")
	})

	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "Group A", "shift": "Morning"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/class-groups", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var cg classgroup.ClassGroup
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cg))
		require.Equal(t, core.ShiftMorning, cg.Shift)
	})

	t.Run("duplicate name", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "Group A", "shift": "evening"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/class-groups", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), "class_group_name_key")
	})

	t.Run("delete blocked while students exist", func(t *testing.T) {
		cg := testutil.CreateClassGroup(t, cgRepo, "Group B", core.ShiftEvening)
		std := testutil.CreateStudent(t, stdRepo, "Alice", cg.ID)

		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/class-groups/%d", cg.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), "class group still has students attached")

		// still retrievable, nothing was deleted
		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/class-groups/%d", cg.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		require.NoError(t, stdRepo.DeleteStudent(req.Context(), std.ID))
		req, rec = newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/class-groups/%d", cg.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	})
}

func Test_classGroupApi_detail(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	cg := testutil.CreateClassGroup(t, cgRepo, "Group D", core.ShiftMorning)
	alice := testutil.CreateStudent(t, stdRepo, "Alice", cg.ID)
	bruno := testutil.CreateStudent(t, stdRepo, "Bruno", cg.ID)
	tchr := testutil.CreateTeacher(t, tchrRepo, "Prof")
	crs := testutil.CreateCourse(t, crsRepo, "History", tchr.ID)
	ddb.LinkCourseToClassGroup(cg.ID, crs.ID)

	sess := testutil.CreateSession(t, attRepo, cg.ID, core.Today())
	body := marchallObj(t, map[string]string{"status": "present"})
	req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/v1/sessions/%d/attendance/%d", sess.ID, alice.ID), token, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var detail struct {
		Group  classgroup.ClassGroup `json:"group"`
		Roster []struct {
			Student struct {
				StudentID int `json:"student_id"`
			} `json:"student"`
		} `json:"roster"`
		Courses []struct {
			Name string `json:"name"`
		} `json:"courses"`
	}

	t.Run("roster order by default", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/class-groups/%d/detail", cg.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		require.Equal(t, cg.Name, detail.Group.Name)
		require.Len(t, detail.Roster, 2)
		require.Equal(t, alice.ID, detail.Roster[0].Student.StudentID)
		require.Equal(t, bruno.ID, detail.Roster[1].Student.StudentID)
		require.Len(t, detail.Courses, 1)
		require.Equal(t, crs.Name, detail.Courses[0].Name)
	})

	t.Run("risk ordering puts absentee first", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/class-groups/%d/detail?ordering=risk", cg.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		require.Len(t, detail.Roster, 2)
		require.Equal(t, bruno.ID, detail.Roster[0].Student.StudentID)
	})

	t.Run("unknown group", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/class-groups/999/detail", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_courseApi_crud(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	tchr := testutil.CreateTeacher(t, tchrRepo, "Prof")

	t.Run("unknown teacher", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"name": "Algebra", "area": "exact_sciences", "shift": "morning", "teacher_id": 999,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})

	t.Run("invalid area", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"name": "Algebra", "area": "astrology", "shift": "morning", "teacher_id": tchr.ID,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), "area")
	})

	t.Run("create and list areas", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"name": "Algebra", "area": "Exact_Sciences", "shift": "morning", "teacher_id": tchr.ID,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/v1/courses/areas", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_studentApi_crud(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	t.Run("create defaults enrolled_on to today", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "Alice", "email": "alice@test.cd"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), core.Today().Format("2006-01-02"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "Eva", "email": "alice@test.cd"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), "student_email_key")
	})

	t.Run("delete blocked while enrollments exist", func(t *testing.T) {
		std := testutil.CreateStudent(t, stdRepo, "Bruno")
		tchr := testutil.CreateTeacher(t, tchrRepo, "Prof")
		crs := testutil.CreateCourse(t, crsRepo, "Biology", tchr.ID)
		require.NoError(t, enrlRepo.Enroll(context.Background(), std.ID, crs.ID, core.Today()))

		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/students/%d", std.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), "course enrollments")
	})

	t.Run("filter by class group", func(t *testing.T) {
		cg := testutil.CreateClassGroup(t, cgRepo, "Group Z", core.ShiftMorning)
		inGroup := testutil.CreateStudent(t, stdRepo, "Carla", cg.ID)
		testutil.CreateStudent(t, stdRepo, "Diego")

		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/students?class_group_id=%d", cg.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), inGroup.Name)
		require.NotContains(t, rec.Body.String(), "Diego")
	})
}
