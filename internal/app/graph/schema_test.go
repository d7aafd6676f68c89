package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusnet/internal/app/auth"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/repositories"
	"github.com/yigit/campusnet/internal/app/services"
	"github.com/yigit/campusnet/internal/db"
)

var (
	admin    = auth.Principal{ID: "00000000-0000-4000-8000-000000000001", Role: auth.RoleAdmin}
	lecturer = auth.Principal{ID: "00000000-0000-4000-8000-000000000002", Role: auth.RoleFaculty, FacultyRoles: []models.FacultyRole{models.FacultyRoleFaculty}}
)

func newSchema(t *testing.T) *Schema {
	t.Helper()
	store := db.NewMemoryStore()
	require.NoError(t, repositories.EnsureCollections(context.Background(), store))
	repos := repositories.NewRepositories(store, zerolog.Nop())
	gate := auth.NewGate(auth.DefaultPolicy(), zerolog.Nop())
	schema, err := NewSchema(services.NewServices(repos, gate, nil, nil, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	return schema
}

func run(t *testing.T, s *Schema, p *auth.Principal, q string, vars map[string]interface{}) *graphql.Result {
	t.Helper()
	ctx := context.Background()
	if p != nil {
		ctx = auth.WithPrincipal(ctx, *p)
	}
	return s.Do(ctx, Request{Query: q, Variables: vars})
}

func data(t *testing.T, res *graphql.Result) map[string]interface{} {
	t.Helper()
	require.Empty(t, res.Errors)
	out, ok := res.Data.(map[string]interface{})
	require.True(t, ok)
	return out
}

const createStudent = `mutation($input: StudentInput!) {
	createStudent(input: $input) { id name email techStack active }
}`

func studentInput(roll, email string, stack ...interface{}) map[string]interface{} {
	return map[string]interface{}{"input": map[string]interface{}{
		"name": "Student " + roll, "roll": roll, "email": email,
		"department": "CSE", "techStack": stack,
	}}
}

func TestStudentRoundTrip(t *testing.T) {
	s := newSchema(t)

	created := data(t, run(t, s, &admin, createStudent, studentInput("21CS042", "Asha@Campus.edu", "go", "react")))["createStudent"].(map[string]interface{})
	id := created["id"].(string)
	assert.Equal(t, "asha@campus.edu", created["email"])
	assert.Equal(t, true, created["active"])

	got := data(t, run(t, s, &lecturer, `query($id: ID!) { getStudent(id: $id) { id roll techStack } }`,
		map[string]interface{}{"id": id}))["getStudent"].(map[string]interface{})
	assert.Equal(t, "21CS042", got["roll"])
	assert.Equal(t, []interface{}{"go", "react"}, got["techStack"])

	updated := data(t, run(t, s, &admin, `mutation($id: ID!) { updateStudent(id: $id, input: {department: "IT"}) { department roll } }`,
		map[string]interface{}{"id": id}))["updateStudent"].(map[string]interface{})
	assert.Equal(t, "IT", updated["department"])
	assert.Equal(t, "21CS042", updated["roll"])

	del := `mutation($id: ID!) { deleteStudent(id: $id) }`
	assert.Equal(t, true, data(t, run(t, s, &admin, del, map[string]interface{}{"id": id}))["deleteStudent"])
	assert.Equal(t, false, data(t, run(t, s, &admin, del, map[string]interface{}{"id": id}))["deleteStudent"])
}

func TestListArgumentsCombine(t *testing.T) {
	s := newSchema(t)
	data(t, run(t, s, &admin, createStudent, studentInput("21CS001", "a@campus.edu", "go", "react")))
	data(t, run(t, s, &admin, createStudent, studentInput("21CS002", "b@campus.edu", "go")))

	all := data(t, run(t, s, &admin, `{ listStudents { id } }`, nil))["listStudents"].([]interface{})
	assert.Len(t, all, 2)

	empty := data(t, run(t, s, &admin, `{ listStudents(techStack: []) { id } }`, nil))["listStudents"].([]interface{})
	assert.Len(t, empty, 2)

	both := data(t, run(t, s, &admin, `{ listStudents(techStack: ["react", "go"]) { roll } }`, nil))["listStudents"].([]interface{})
	require.Len(t, both, 1)
	assert.Equal(t, "21CS001", both[0].(map[string]interface{})["roll"])

	named := data(t, run(t, s, &admin, `{ listStudents(nameContains: "cs002", department: "CSE") { roll } }`, nil))["listStudents"].([]interface{})
	require.Len(t, named, 1)
	assert.Equal(t, "21CS002", named[0].(map[string]interface{})["roll"])
}

func TestMissingRecordsAreNull(t *testing.T) {
	s := newSchema(t)
	res := data(t, run(t, s, &admin, `{
		byMalformed: getStudent(id: "not-a-uuid") { id }
		byUnknown: getFaculty(id: "00000000-0000-4000-8000-00000000abcd") { id }
	}`, nil))
	assert.Nil(t, res["byMalformed"])
	assert.Nil(t, res["byUnknown"])

	res = data(t, run(t, s, &admin, `mutation { updateStudent(id: "00000000-0000-4000-8000-00000000abcd", input: {name: "x"}) { id } }`, nil))
	assert.Nil(t, res["updateStudent"])
}

func TestErrorsCarryCodes(t *testing.T) {
	s := newSchema(t)

	res := run(t, s, nil, `{ listStudents { id } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeUnauthenticated, res.Errors[0].Extensions["code"])

	res = run(t, s, &lecturer, createStudent, studentInput("21CS001", "a@campus.edu"))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeForbidden, res.Errors[0].Extensions["code"])

	input := studentInput("21CS001", "a@campus.edu")
	delete(input["input"].(map[string]interface{}), "department")
	res = run(t, s, &admin, createStudent, input)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeValidationFailed, res.Errors[0].Extensions["code"])
	assert.Equal(t, "department", res.Errors[0].Extensions["field"])
	assert.NotContains(t, res.Errors[0].Extensions, "duplicate")

	data(t, run(t, s, &admin, createStudent, studentInput("21CS001", "a@campus.edu")))
	res = run(t, s, &admin, createStudent, studentInput("21CS001", "other@campus.edu"))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeValidationFailed, res.Errors[0].Extensions["code"])
	assert.Equal(t, "roll", res.Errors[0].Extensions["field"])
	assert.Equal(t, true, res.Errors[0].Extensions["duplicate"])
}

func TestOwnedRecordsAndProfile(t *testing.T) {
	s := newSchema(t)
	student := data(t, run(t, s, &admin, createStudent, studentInput("21CS001", "a@campus.edu")))["createStudent"].(map[string]interface{})
	id := student["id"].(string)
	self := auth.Principal{ID: id, Role: auth.RoleStudent}

	cert := data(t, run(t, s, &self, `mutation($sid: String!) {
		createCertificate(input: {studentId: $sid, title: "CKA", organization: "CNCF", issueDate: "2024-02-10"}) { id verified }
	}`, map[string]interface{}{"sid": id}))["createCertificate"].(map[string]interface{})
	assert.Equal(t, false, cert["verified"])

	res := run(t, s, &self, `mutation($id: ID!) { verifyCertificate(id: $id) { verified } }`, map[string]interface{}{"id": cert["id"]})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeForbidden, res.Errors[0].Extensions["code"])

	verified := data(t, run(t, s, &lecturer, `mutation($id: ID!) { verifyCertificate(id: $id) { verified } }`,
		map[string]interface{}{"id": cert["id"]}))["verifyCertificate"].(map[string]interface{})
	assert.Equal(t, true, verified["verified"])

	profile := data(t, run(t, s, &lecturer, `query($id: ID!) { studentProfile(id: $id) { student { roll } certificates { title } projects { id } } }`,
		map[string]interface{}{"id": id}))["studentProfile"].(map[string]interface{})
	assert.Equal(t, "21CS001", profile["student"].(map[string]interface{})["roll"])
	assert.Len(t, profile["certificates"], 1)
	assert.Empty(t, profile["projects"])

	// Deleting the student takes its records along
	data(t, run(t, s, &admin, `mutation($id: ID!) { deleteStudent(id: $id) }`, map[string]interface{}{"id": id}))
	certs := data(t, run(t, s, &admin, `{ listCertificates { id } }`, nil))["listCertificates"].([]interface{})
	assert.Empty(t, certs)
}

func TestFeed(t *testing.T) {
	s := newSchema(t)
	reader := auth.Principal{ID: "00000000-0000-4000-8000-000000000003", Role: auth.RoleStudent}

	res := run(t, s, &reader, `mutation { createPost(content: "hello") { id } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeForbidden, res.Errors[0].Extensions["code"])

	post := data(t, run(t, s, &lecturer, `mutation { createPost(content: "  Exams moved to Monday ") { id content authorRole likeCount } }`, nil))["createPost"].(map[string]interface{})
	assert.Equal(t, "Exams moved to Monday", post["content"])
	assert.Equal(t, "faculty", post["authorRole"])
	vars := map[string]interface{}{"id": post["id"]}

	like := `mutation($id: ID!) { likePost(id: $id) { likeCount } }`
	data(t, run(t, s, &reader, like, vars))
	liked := data(t, run(t, s, &reader, like, vars))["likePost"].(map[string]interface{})
	assert.Equal(t, 1, liked["likeCount"])

	commented := data(t, run(t, s, &reader, `mutation($id: ID!) { addComment(postId: $id, content: "thanks") { comments { id authorId content } } }`,
		vars))["addComment"].(map[string]interface{})
	comments := commented["comments"].([]interface{})
	require.Len(t, comments, 1)
	assert.Equal(t, reader.ID, comments[0].(map[string]interface{})["authorId"])

	missing := data(t, run(t, s, &reader, `mutation { likePost(id: "00000000-0000-4000-8000-00000000abcd") { id } }`, nil))
	assert.Nil(t, missing["likePost"])
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newSchema(t)
	router := gin.New()
	router.POST("/graphql", func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), admin))
	}, Handler(s))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ listStudents { id } }"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"listStudents":[]}}`, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
