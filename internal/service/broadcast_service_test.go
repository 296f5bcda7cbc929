package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/models"
)

type bindingsStub struct {
	data map[string]string
}

func (s *bindingsStub) Load() (map[string]string, error) { return s.data, nil }
func (s *bindingsStub) Bind(chatID, phone string) error {
	s.data[chatID] = phone
	return nil
}
func (s *bindingsStub) Phone(chatID string) (string, bool, error) {
	phone, ok := s.data[chatID]
	return phone, ok, nil
}

type weeklyStub struct {
	table *models.WeeklyTable
	err   error
}

func (s weeklyStub) Load() (*models.WeeklyTable, error) { return s.table, s.err }

type monthlyStub struct {
	rows []models.MonthlyRow
}

func (s monthlyStub) Load() ([]models.MonthlyRow, error) { return s.rows, nil }

type resultStoreStub struct {
	saved []string
}

func (s *resultStoreStub) Save(_ context.Context, name string, _ []models.SubjectCell, _ string) error {
	s.saved = append(s.saved, models.NormalizeName(name))
	return nil
}
func (s *resultStoreStub) CurrentMonth(context.Context, string) ([]models.ResultRow, error) {
	return nil, nil
}

type senderStub struct {
	sent    map[string][]string
	failFor map[string]bool
}

func newSenderStub() *senderStub {
	return &senderStub{sent: map[string][]string{}, failFor: map[string]bool{}}
}

func (s *senderStub) SendText(chatID, text string) error {
	if s.failFor[chatID] {
		return errors.New("chat unreachable")
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

func weeklyTableFixture() *models.WeeklyTable {
	return &models.WeeklyTable{
		HasPhones: true,
		Rows: []models.WeeklyRow{
			{
				Name:  "Ali Karimov",
				Phone: "+992900000000",
				Cells: []models.SubjectCell{{Subject: "Химия", Mark: "0.92"}},
			},
			{
				Name:  "Zarina Rahimova",
				Phone: "+992911111111",
				Cells: []models.SubjectCell{{Subject: "Физика", Mark: "0.8"}},
			},
		},
	}
}

func TestWeeklyBroadcastDeliversOnlyToMatchedChat(t *testing.T) {
	bindings := &bindingsStub{data: map[string]string{
		"555": "+992900000000",
		"999": "+992000000000", // bound but absent from the sheet
	}}
	store := &resultStoreStub{}
	sender := newSenderStub()

	svc := NewBroadcastService(bindings, weeklyStub{table: weeklyTableFixture()}, monthlyStub{},
		store, sender, zap.NewNop(), nil)

	sent, err := svc.Weekly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, sender.sent["555"], 1)
	assert.Contains(t, sender.sent["555"][0], "Химия: 92%")
	assert.Empty(t, sender.sent["999"])
	assert.Equal(t, []string{"ali karimov"}, store.saved)
}

func TestWeeklyBroadcastContinuesPastSendFailure(t *testing.T) {
	bindings := &bindingsStub{data: map[string]string{
		"555": "+992900000000",
		"777": "+992911111111",
	}}
	sender := newSenderStub()
	sender.failFor["555"] = true

	svc := NewBroadcastService(bindings, weeklyStub{table: weeklyTableFixture()}, monthlyStub{},
		&resultStoreStub{}, sender, zap.NewNop(), nil)

	sent, err := svc.Weekly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, sender.sent["777"], 1)
	assert.Contains(t, sender.sent["777"][0], "Физика: 80%")
}

func TestMonthlyReportResolvesChatsByName(t *testing.T) {
	bindings := &bindingsStub{data: map[string]string{"555": "+992900000000"}}
	monthly := monthlyStub{rows: []models.MonthlyRow{
		{Name: "Ali Karimov", Language: "70", Biology: "140", Chemistry: "160",
			Physics: "95", TotalScore: "465", TotalPercent: "93"},
		{Name: "Unbound Student", TotalScore: "300", TotalPercent: "60"},
	}}
	sender := newSenderStub()

	svc := NewBroadcastService(bindings, weeklyStub{table: weeklyTableFixture()}, monthly,
		&resultStoreStub{}, sender, zap.NewNop(), nil)

	sent, err := svc.MonthlyReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, sender.sent["555"], 1)
	assert.Contains(t, sender.sent["555"][0], "465")
	assert.Contains(t, sender.sent["555"][0], "93%")
}
