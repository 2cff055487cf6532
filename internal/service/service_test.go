package service

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/cache"
	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/internal/testutil"
)

type testEnv struct {
	db      *gorm.DB
	repos   *repository.Repositories
	storage *media.LocalStorage

	auth    AuthService
	feed    FeedService
	social  SocialService
	profile ProfileService
	message MessageService
	search  SearchService
}

func newTestEnv(t *testing.T, stats *cache.StatsCache) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	storage := media.NewLocalStorage(t.TempDir(), "/media/", 1<<20)
	return &testEnv{
		db:      db,
		repos:   repos,
		storage: storage,
		auth:    NewAuthService(repos, bcrypt.MinCost),
		feed:    NewFeedService(repos, storage),
		social:  NewSocialService(repos, stats),
		profile: NewProfileService(repos, stats, storage),
		message: NewMessageService(repos, storage),
		search:  NewSearchService(repos.Users),
	}
}

// uploadFile 构造一个内存中的 multipart 文件
func uploadFile(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	files := form.File[field]
	require.Len(t, files, 1)
	return files[0]
}
