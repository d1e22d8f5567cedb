package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"nivora-be/internal/entity"
	"nivora-be/internal/repository/specification"
	"nivora-be/internal/repository/unitofwork"
	"nivora-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.NoteRepository())
	assert.NotNil(t, uow.ProfileRepository())
	assert.NotNil(t, uow.SystemLogRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check Note Repository", func(t *testing.T) {
		count, err := uow.NoteRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Note count: %d", count)
	})

	t.Run("Note Round Trip", func(t *testing.T) {
		userId := uuid.New()
		content := "integration body"
		note := &entity.Note{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     "integration note",
			Content:   &content,
			BgColor:   "#ffffff",
			Tags:      []string{"it"},
			NoteDate:  time.Now(),
			CreatedAt: time.Now(),
		}

		require.NoError(t, uow.NoteRepository().Create(context.Background(), note))
		defer func() {
			_ = uow.NoteRepository().Delete(context.Background(), note.Id)
		}()

		found, err := uow.NoteRepository().FindOne(context.Background(),
			specification.ByID{ID: note.Id},
			specification.OwnedByUser{UserID: userId},
		)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "integration note", found.Title)
		assert.Equal(t, []string{"it"}, found.Tags)

		other, err := uow.NoteRepository().FindOne(context.Background(),
			specification.ByID{ID: note.Id},
			specification.OwnedByUser{UserID: uuid.New()},
		)
		require.NoError(t, err)
		assert.Nil(t, other, "ownership scope must hide the row")
	})
}
