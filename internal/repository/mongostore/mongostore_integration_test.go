//go:build integration

package mongostore_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/repository/mongostore"
)

var tcClient *mongo.Client

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("failed to start mongo testcontainer: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("mongo host: %v", err)
	}
	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		log.Fatalf("mongo port: %v", err)
	}

	client, err := mongostore.Connect(ctx, fmt.Sprintf("mongodb://%s:%s", host, port.Port()))
	if err != nil {
		_ = container.Terminate(ctx)
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	tcClient = client

	code := m.Run()

	_ = client.Disconnect(ctx)
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate mongo container: %v", err)
	}
	os.Exit(code)
}

func freshDB(t *testing.T) *mongo.Database {
	t.Helper()
	db := tcClient.Database("shop_" + uuid.NewString()[:8])
	require.NoError(t, mongostore.EnsureIndexes(context.Background(), db))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })
	return db
}

func TestAccountStore(t *testing.T) {
	ctx := context.Background()
	store := mongostore.NewAccountStore(freshDB(t))

	code := "12345"
	a := &domain.Account{ID: uuid.NewString(), Kind: domain.KindCustomer, Name: "A", Email: "a@x.io", Phone: "+1", PasswordHash: "h", VerificationCode: &code}
	require.NoError(t, store.Create(ctx, a))

	dup := *a
	dup.ID = uuid.NewString()
	require.ErrorIs(t, store.Create(ctx, &dup), apperr.ErrConflict)

	hit, err := store.FindByEmailAndCode(ctx, domain.KindCustomer, "a@x.io", "12345")
	require.NoError(t, err)
	require.NotNil(t, hit)

	updated, err := store.SetCode(ctx, domain.ByEmail(domain.KindCustomer, "a@x.io"), "99999")
	require.NoError(t, err)
	require.Equal(t, "99999", *updated.VerificationCode)

	ok, err := store.Approve(ctx, domain.ByID(domain.KindCustomer, a.ID))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = store.Approve(ctx, domain.ByID(domain.KindCustomer, a.ID))
	require.NoError(t, err)
	require.True(t, ok)

	missing, err := store.Get(ctx, domain.ByEmail(domain.KindCourier, "a@x.io"))
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestOrderStore_ApproveAndIntake(t *testing.T) {
	ctx := context.Background()
	store := mongostore.NewOrderStore(freshDB(t))

	ok, err := store.UpsertIntake(ctx, &domain.Order{ID: "O1", Status: domain.StatusCreated, CustomerID: "U1"})
	require.NoError(t, err)
	require.True(t, ok)

	o, err := store.ApproveIfPaid(ctx, "O1", "D1")
	require.NoError(t, err)
	require.Nil(t, o, "created orders cannot be approved")

	ok, err = store.UpsertIntake(ctx, &domain.Order{ID: "O1", Status: domain.StatusPaymentConfirmed, CustomerID: "U1"})
	require.NoError(t, err)
	require.True(t, ok)

	const n = 6
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := store.ApproveIfPaid(ctx, "O1", "D1")
			assert.NoError(t, err)
			if got != nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)

	ok, err = store.UpsertIntake(ctx, &domain.Order{ID: "O1", Status: domain.StatusPaymentConfirmed, CustomerID: "U1"})
	require.NoError(t, err)
	require.False(t, ok)

	final, err := store.Get(ctx, "O1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, final.Status)
	require.True(t, final.Consistent())
}

func TestDeadLetterStore(t *testing.T) {
	ctx := context.Background()
	store := mongostore.NewDeadLetterStore(freshDB(t))

	d := &domain.DeadLetter{ID: uuid.NewString(), Payload: []byte(`{"kind":"user"}`), Attempts: 1, LastError: "x"}
	require.NoError(t, store.Save(ctx, d))
	require.NoError(t, store.MarkFailed(ctx, d.ID, "y"))

	list, err := store.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 2, list[0].Attempts)

	require.NoError(t, store.Delete(ctx, d.ID))
	list, err = store.List(ctx, 5)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestNotificationStore_InsertSameIDOnce(t *testing.T) {
	ctx := context.Background()
	store := mongostore.NewNotificationStore(freshDB(t))

	rec := &domain.NotificationRecord{ID: uuid.NewString(), Title: "success", Body: "b", TargetUserID: "U1", Topic: domain.UserTopic("U1")}
	require.NoError(t, store.Insert(ctx, rec))
	first := rec.CreatedAt

	again := *rec
	again.CreatedAt = first.Add(time.Hour)
	require.NoError(t, store.Insert(ctx, &again))
	require.WithinDuration(t, first, again.CreatedAt, time.Millisecond)

	list, err := store.ListForUser(ctx, "U1", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
