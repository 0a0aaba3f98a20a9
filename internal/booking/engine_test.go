package booking

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farhanadi/ticketbook/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Event{}, &models.Ticket{}, &models.Booking{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedTicket(t *testing.T, db *gorm.DB) *models.Ticket {
	t.Helper()
	event := &models.Event{Title: "Concert", Date: time.Now().UTC()}
	require.NoError(t, db.Create(event).Error)

	ticket := &models.Ticket{
		EventID: event.ID,
		Price:   decimal.NewFromFloat(9.99),
	}
	require.NoError(t, db.Create(ticket).Error)
	return ticket
}

func reloadTicket(t *testing.T, db *gorm.DB, id uint) *models.Ticket {
	t.Helper()
	var ticket models.Ticket
	require.NoError(t, db.First(&ticket, id).Error)
	return &ticket
}

func TestClaim(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	ticket := seedTicket(t, db)

	b, err := Claim(db, user.ID, ticket.ID)
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, user.ID, b.UserID)
	assert.Equal(t, ticket.ID, b.TicketID)
	assert.False(t, b.BookedAt.IsZero())

	got := reloadTicket(t, db, ticket.ID)
	assert.True(t, got.IsBooked)
	require.NotNil(t, got.BookingID)
	assert.Equal(t, b.ID, *got.BookingID)

	var count int64
	require.NoError(t, db.Model(&models.Booking{}).Where("ticket_id = ?", ticket.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestClaim_TicketNotFound(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")

	_, err := Claim(db, user.ID, 12345)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestClaim_AlreadyBooked(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	ticket := seedTicket(t, db)

	first, err := Claim(db, alice.ID, ticket.ID)
	require.NoError(t, err)

	_, err = Claim(db, bob.ID, ticket.ID)
	assert.ErrorIs(t, err, ErrTicketBooked)

	// The losing claim leaves no trace.
	got := reloadTicket(t, db, ticket.ID)
	assert.True(t, got.IsBooked)
	require.NotNil(t, got.BookingID)
	assert.Equal(t, first.ID, *got.BookingID)

	var count int64
	require.NoError(t, db.Model(&models.Booking{}).Where("ticket_id = ?", ticket.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// rivalOnBookingCreate runs fn on the claim transaction right before the
// booking insert, after the engine has already read the ticket as
// unbooked. This interleaves a rival write into the window the
// conditional update guards.
func rivalOnBookingCreate(t *testing.T, db *gorm.DB, fn func(tx *gorm.DB)) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("rival_write", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "bookings" {
			return
		}
		fired = true
		fn(tx.Session(&gorm.Session{NewDB: true}))
	})
	require.NoError(t, err)
}

func TestClaim_LosesRaceToRivalClaim(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	ticket := seedTicket(t, db)

	rivalOnBookingCreate(t, db, func(tx *gorm.DB) {
		require.NoError(t, tx.Model(&models.Ticket{}).Where("id = ?", ticket.ID).Update("is_booked", true).Error)
	})

	_, err := Claim(db, user.ID, ticket.ID)
	assert.ErrorIs(t, err, ErrTicketBooked)

	// The rollback discarded the losing booking insert.
	var count int64
	require.NoError(t, db.Model(&models.Booking{}).Where("ticket_id = ?", ticket.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestClaim_LosesRaceToTicketDeletion(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	ticket := seedTicket(t, db)

	rivalOnBookingCreate(t, db, func(tx *gorm.DB) {
		require.NoError(t, tx.Delete(&models.Ticket{}, ticket.ID).Error)
	})

	_, err := Claim(db, user.ID, ticket.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Booking{}).Where("ticket_id = ?", ticket.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRelease_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	ticket := seedTicket(t, db)

	b, err := Claim(db, user.ID, ticket.ID)
	require.NoError(t, err)

	require.NoError(t, Release(db, user.ID, b.ID))

	got := reloadTicket(t, db, ticket.ID)
	assert.False(t, got.IsBooked)
	assert.Nil(t, got.BookingID)

	var count int64
	require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", b.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRelease_NotOwned(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	ticket := seedTicket(t, db)

	b, err := Claim(db, alice.ID, ticket.ID)
	require.NoError(t, err)

	err = Release(db, bob.ID, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	// Booking and ticket untouched.
	got := reloadTicket(t, db, ticket.ID)
	assert.True(t, got.IsBooked)

	var count int64
	require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", b.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRelease_Twice(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	ticket := seedTicket(t, db)

	b, err := Claim(db, user.ID, ticket.ID)
	require.NoError(t, err)

	require.NoError(t, Release(db, user.ID, b.ID))
	assert.ErrorIs(t, Release(db, user.ID, b.ID), ErrBookingNotFound)
}

func TestListForUser(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	var aliceBookings []uint
	for i := 0; i < 3; i++ {
		ticket := seedTicket(t, db)
		b, err := Claim(db, alice.ID, ticket.ID)
		require.NoError(t, err)
		aliceBookings = append(aliceBookings, b.ID)
	}

	bobTicket := seedTicket(t, db)
	_, err := Claim(db, bob.ID, bobTicket.ID)
	require.NoError(t, err)

	got, err := ListForUser(db, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, b := range got {
		assert.Equal(t, aliceBookings[i], b.ID)
		assert.Equal(t, alice.ID, b.UserID)
	}
}

func TestListForUser_Empty(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")

	got, err := ListForUser(db, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// Full claim/release scenario: claim, duplicate claim, foreign release,
// owner release, repeated release.
func TestClaimReleaseScenario(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	ticket := seedTicket(t, db)

	b1, err := Claim(db, alice.ID, ticket.ID)
	require.NoError(t, err)

	_, err = Claim(db, alice.ID, ticket.ID)
	assert.ErrorIs(t, err, ErrTicketBooked)

	assert.ErrorIs(t, Release(db, bob.ID, b1.ID), ErrBookingNotFound)

	require.NoError(t, Release(db, alice.ID, b1.ID))
	got := reloadTicket(t, db, ticket.ID)
	assert.False(t, got.IsBooked)
	assert.Nil(t, got.BookingID)

	assert.ErrorIs(t, Release(db, alice.ID, b1.ID), ErrBookingNotFound)
}
