package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commitPage renders n minimal commit objects.
func commitPage(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"sha":"%040d"}`, i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func newTestServer(t *testing.T, lastPage int, lastCount int) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/golang/go", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"id":1,"stargazers_count":120,"forks_count":17}`))
	})
	mux.HandleFunc("/repos/golang/go/commits", func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		page := r.URL.Query().Get("page")
		if lastPage == 0 {
			_, _ = w.Write([]byte(commitPage(lastCount)))
			return
		}
		if page == fmt.Sprint(lastPage) {
			_, _ = w.Write([]byte(commitPage(lastCount)))
			return
		}
		link := fmt.Sprintf(`<http://%s/repos/golang/go/commits?per_page=100&page=2>; rel="next", <http://%s/repos/golang/go/commits?per_page=100&page=%d>; rel="last"`, r.Host, r.Host, lastPage)
		w.Header().Set("Link", link)
		_, _ = w.Write([]byte(commitPage(100)))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &calls
}

func TestOverviewPaginated(t *testing.T) {
	server, calls := newTestServer(t, 7, 42)
	client, err := NewClient("token", 5*time.Second, server.URL)
	require.NoError(t, err)

	overview, err := client.Overview(context.Background(), "golang/go")
	require.NoError(t, err)

	assert.Equal(t, &schema.Overview{Stars: 120, Forks: 17, Commits: 6*100 + 42}, overview)
	assert.Equal(t, 3, *calls)
}

func TestOverviewSinglePage(t *testing.T) {
	server, _ := newTestServer(t, 0, 9)
	client, err := NewClient("", 5*time.Second, server.URL)
	require.NoError(t, err)

	overview, err := client.Overview(context.Background(), "golang/go")
	require.NoError(t, err)
	assert.Equal(t, 9, overview.Commits)
}

func TestOverviewErrors(t *testing.T) {
	server, _ := newTestServer(t, 0, 1)
	client, err := NewClient("", 5*time.Second, server.URL)
	require.NoError(t, err)

	_, err = client.Overview(context.Background(), "not-a-repo")
	assert.ErrorIs(t, err, contract.ErrInvalidRepo)

	_, err = client.Overview(context.Background(), "golang/missing")
	assert.Error(t, err)
}
