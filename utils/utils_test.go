package utils

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counselor_recommend/models"
)

func TestKeywordList(t *testing.T) {
	l := NewKeywordList("焦虑", "", " 紧张 ", "焦虑")
	l.Add("担忧", "紧张", "   ")

	assert.Equal(t, []string{"焦虑", "紧张", "担忧"}, l.Items())
	assert.Equal(t, 3, l.Len())
	assert.True(t, l.Contains("紧张"))
	assert.False(t, l.Contains(""))

	items := l.Items()
	items[0] = "changed"
	assert.Equal(t, "焦虑", l.Items()[0])

	l.Reset()
	assert.Zero(t, l.Len())
	l.Add("失眠")
	assert.Equal(t, []string{"失眠"}, l.Items())
}

func TestKeywordListZeroValue(t *testing.T) {
	var l KeywordList
	assert.False(t, l.Contains("x"))
	assert.Empty(t, l.Items())
	l.Add("x")
	assert.True(t, l.Contains("x"))
}

func TestDeduplicateSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, DeduplicateSlice([]string{" a", "b", "a ", ""}))
	assert.Empty(t, DeduplicateSlice(nil))
}

func TestNormalizeTerm(t *testing.T) {
	assert.Equal(t, "焦虑", NormalizeTerm("  焦虑　"))
	assert.Equal(t, "ABC123", NormalizeTerm("ＡＢＣ１２３"))
	assert.Equal(t, "", NormalizeTerm("   "))
}

func TestRuneHelpers(t *testing.T) {
	assert.Equal(t, 4, RuneLen("情绪低落"))
	assert.Equal(t, "情绪低", DropLastRune("情绪低落"))
	assert.Equal(t, "", DropLastRune(""))
	assert.Equal(t, 1, IndexOf([]string{"a", "b"}, "b"))
	assert.Equal(t, -1, IndexOf([]string{"a"}, "c"))
}

func TestIsSQLNoRowsError(t *testing.T) {
	assert.True(t, IsSQLNoRowsError(sql.ErrNoRows))
	assert.True(t, IsSQLNoRowsError(fmt.Errorf("wrapped: %w", sql.ErrNoRows)))
	assert.False(t, IsSQLNoRowsError(nil))
	assert.False(t, IsSQLNoRowsError(sql.ErrConnDone))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteResponses(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessResponse(rec, map[string]int{"n": 1})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	resp := decode(t, rec)
	assert.Equal(t, models.CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)

	rec = httptest.NewRecorder()
	WriteErrorResponse(rec, models.CodeCounselorNotFound, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "咨询师不存在", decode(t, rec).Message)

	rec = httptest.NewRecorder()
	WriteCustomErrorResponse(rec, models.CodeDatabaseError, "db down", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "db down", decode(t, rec).Message)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw    string
		ok     bool
		want   int64
		status int
		code   int
	}{
		{raw: "42", ok: true, want: 42},
		{raw: "", status: http.StatusBadRequest, code: models.CodeMissingParams},
		{raw: "abc", status: http.StatusBadRequest, code: models.CodeInvalidParams},
		{raw: "0", status: http.StatusBadRequest, code: models.CodeInvalidParams},
		{raw: "-3", status: http.StatusBadRequest, code: models.CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rec := httptest.NewRecorder()
			id, ok := ParseID(rec, "uid", tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, id)
				assert.Zero(t, rec.Body.Len())
				return
			}
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec).Code)
		})
	}
}
