package telegram

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"aesthetic_doctor_bot/internal/domain"
	"aesthetic_doctor_bot/internal/feature/metrics"
)

type sentMessage struct {
	kind     string
	chatID   any
	text     string
	fileName string
	data     string
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, sentMessage{kind: "message", chatID: params.ChatID, text: params.Text})
	return &models.Message{}, f.err
}

func (f *fakeSender) SendDocument(_ context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	f.sent = append(f.sent, upload("document", params.ChatID, params.Document, params.Caption))
	return &models.Message{}, f.err
}

func (f *fakeSender) SendPhoto(_ context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	f.sent = append(f.sent, upload("photo", params.ChatID, params.Photo, params.Caption))
	return &models.Message{}, f.err
}

func upload(kind string, chatID any, file models.InputFile, caption string) sentMessage {
	msg := sentMessage{kind: kind, chatID: chatID, text: caption}
	if up, ok := file.(*models.InputFileUpload); ok {
		msg.fileName = up.Filename
		data, _ := io.ReadAll(up.Data)
		msg.data = string(data)
	}
	return msg
}

type metricsCall struct {
	cmd  metrics.Command
	args string
}

type fakeMetrics struct {
	calls []metricsCall
	reply domain.Reply
}

func (f *fakeMetrics) Handle(_ context.Context, cmd metrics.Command, args string) domain.Reply {
	f.calls = append(f.calls, metricsCall{cmd: cmd, args: args})
	return f.reply
}

type fakeWizard struct {
	active  bool
	started []int64
	texts   []string
}

func (f *fakeWizard) Start(chatID int64) domain.Reply {
	f.started = append(f.started, chatID)
	f.active = true
	return domain.TextReply("first name?")
}

func (f *fakeWizard) Active(int64) bool {
	return f.active
}

func (f *fakeWizard) Handle(_ context.Context, _ int64, text string) domain.Reply {
	f.texts = append(f.texts, text)
	return domain.TextReply("got " + text)
}

func textUpdate(text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			From: &models.User{ID: 7, Username: "drmaria", FirstName: "Maria"},
			Chat: models.Chat{ID: 70},
			Text: text,
		},
	}
}

func newTestRouter(m MetricsHandler, w CodeWizard) (*Router, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	return NewRouter(m, w, logrus.NewEntry(logger)), hook
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text     string
		wantName string
		wantArgs string
		wantOK   bool
	}{
		{"/metrics", "metrics", "", true},
		{"/metrics csv  patients_totals ", "metrics", "csv  patients_totals", true},
		{"/Metrics_Text@AestheticDoctorBot treatments_daily", "metrics_text", "treatments_daily", true},
		{"  /ping", "ping", "", true},
		{"hello", "", "", false},
		{"/", "", "", false},
		{"/@bot", "", "", false},
	}

	for _, tt := range tests {
		name, args, ok := parseCommand(tt.text)
		if name != tt.wantName || args != tt.wantArgs || ok != tt.wantOK {
			t.Fatalf("parseCommand(%q) = (%q, %q, %v), want (%q, %q, %v)", tt.text, name, args, ok, tt.wantName, tt.wantArgs, tt.wantOK)
		}
	}
}

func TestDispatchFixedReplies(t *testing.T) {
	router, _ := newTestRouter(&fakeMetrics{}, &fakeWizard{})

	for text, want := range map[string]string{"/start": replyStart, "/ping": replyPong, "/ping@AestheticDoctorBot": replyPong} {
		s := &fakeSender{}
		router.Dispatch(context.Background(), s, textUpdate(text), "ref")

		if len(s.sent) != 1 || s.sent[0].text != want {
			t.Fatalf("%s: expected reply %q, got %+v", text, want, s.sent)
		}
		if s.sent[0].chatID != int64(70) {
			t.Fatalf("%s: expected chat 70, got %v", text, s.sent[0].chatID)
		}
	}
}

func TestDispatchMetricsCommands(t *testing.T) {
	tests := []struct {
		text     string
		wantCmd  metrics.Command
		wantArgs string
	}{
		{"/metrics csv patients_totals", metrics.CommandMetrics, "csv patients_totals"},
		{"/metrics_text", metrics.CommandMetricsText, ""},
		{"/metrics_csv@Bot comparisons_daily", metrics.CommandMetricsCSV, "comparisons_daily"},
		{"/metrics_chart treatments_daily", metrics.CommandMetricsChart, "treatments_daily"},
		{"/doctor_activity", metrics.CommandDoctorActivity, ""},
	}

	for _, tt := range tests {
		m := &fakeMetrics{reply: domain.TextReply("report")}
		router, _ := newTestRouter(m, &fakeWizard{})
		s := &fakeSender{}

		router.Dispatch(context.Background(), s, textUpdate(tt.text), "ref")

		if len(m.calls) != 1 {
			t.Fatalf("%s: expected one metrics call, got %d", tt.text, len(m.calls))
		}
		if m.calls[0].cmd.Name != tt.wantCmd.Name || m.calls[0].cmd.Format != tt.wantCmd.Format || m.calls[0].args != tt.wantArgs {
			t.Fatalf("%s: unexpected call %+v", tt.text, m.calls[0])
		}
		if len(s.sent) != 1 || s.sent[0].text != "report" {
			t.Fatalf("%s: expected report reply, got %+v", tt.text, s.sent)
		}
	}
}

func TestDispatchSendsAttachments(t *testing.T) {
	m := &fakeMetrics{reply: domain.Reply{Attachment: &domain.Attachment{
		Kind:     domain.AttachmentDocument,
		FileName: "metrics-1.csv",
		Data:     []byte("# patients_totals\nn/a"),
		Caption:  "CSV metrics: patients_totals",
	}}}
	router, _ := newTestRouter(m, &fakeWizard{})
	s := &fakeSender{}

	router.Dispatch(context.Background(), s, textUpdate("/metrics_csv patients_totals"), "ref")

	want := sentMessage{kind: "document", chatID: int64(70), text: "CSV metrics: patients_totals", fileName: "metrics-1.csv", data: "# patients_totals\nn/a"}
	if len(s.sent) != 1 || s.sent[0] != want {
		t.Fatalf("expected %+v, got %+v", want, s.sent)
	}

	m.reply = domain.Reply{Attachment: &domain.Attachment{Kind: domain.AttachmentPhoto, FileName: "c.png", Data: []byte("png"), Caption: "chart"}}
	s = &fakeSender{}
	router.Dispatch(context.Background(), s, textUpdate("/metrics_chart"), "ref")

	if len(s.sent) != 1 || s.sent[0].kind != "photo" || s.sent[0].data != "png" {
		t.Fatalf("expected photo upload, got %+v", s.sent)
	}
}

func TestDispatchRoutesTextToActiveWizard(t *testing.T) {
	w := &fakeWizard{}
	router, _ := newTestRouter(&fakeMetrics{}, w)
	s := &fakeSender{}

	router.Dispatch(context.Background(), s, textUpdate("/get_new_code"), "ref")
	router.Dispatch(context.Background(), s, textUpdate("Maria"), "ref")

	if len(w.started) != 1 || w.started[0] != 70 {
		t.Fatalf("expected wizard start for chat 70, got %v", w.started)
	}
	if len(w.texts) != 1 || w.texts[0] != "Maria" {
		t.Fatalf("expected wizard to receive the name, got %v", w.texts)
	}
	if len(s.sent) != 2 || s.sent[1].text != "got Maria" {
		t.Fatalf("unexpected replies %+v", s.sent)
	}
}

func TestDispatchCommandsWinOverWizard(t *testing.T) {
	w := &fakeWizard{active: true}
	router, _ := newTestRouter(&fakeMetrics{}, w)
	s := &fakeSender{}

	router.Dispatch(context.Background(), s, textUpdate("/ping"), "ref")

	if len(w.texts) != 0 {
		t.Fatalf("expected wizard to be bypassed, got %v", w.texts)
	}
	if len(s.sent) != 1 || s.sent[0].text != replyPong {
		t.Fatalf("expected pong, got %+v", s.sent)
	}
}

func TestDispatchUnknownCommandBypassesWizard(t *testing.T) {
	w := &fakeWizard{active: true}
	router, _ := newTestRouter(&fakeMetrics{}, w)
	s := &fakeSender{}

	router.Dispatch(context.Background(), s, textUpdate("/help"), "ref")

	if len(w.texts) != 0 {
		t.Fatalf("expected unknown command to bypass wizard, got %v", w.texts)
	}
	if len(s.sent) != 1 || !strings.HasPrefix(s.sent[0].text, "Hi @drmaria!") {
		t.Fatalf("expected greeting, got %+v", s.sent)
	}
}

func TestDispatchGreetsOutsideWizard(t *testing.T) {
	router, _ := newTestRouter(&fakeMetrics{}, &fakeWizard{})

	s := &fakeSender{}
	router.Dispatch(context.Background(), s, textUpdate("hello"), "ref")
	if len(s.sent) != 1 || !strings.HasPrefix(s.sent[0].text, "Hi @drmaria!") {
		t.Fatalf("expected greeting by username, got %+v", s.sent)
	}

	update := textUpdate("/unknown")
	update.Message.From = &models.User{ID: 7, FirstName: "Maria"}
	s = &fakeSender{}
	router.Dispatch(context.Background(), s, update, "ref")
	if len(s.sent) != 1 || !strings.HasPrefix(s.sent[0].text, "Hi Maria!") {
		t.Fatalf("expected greeting by first name, got %+v", s.sent)
	}
	if !strings.Contains(s.sent[0].text, "/get_new_code") {
		t.Fatalf("expected command list in greeting, got %q", s.sent[0].text)
	}
}

func TestDispatchIgnoresNonText(t *testing.T) {
	router, _ := newTestRouter(&fakeMetrics{}, &fakeWizard{})
	s := &fakeSender{}

	router.Dispatch(context.Background(), s, &models.Update{}, "ref")
	router.Dispatch(context.Background(), s, textUpdate("   "), "ref")

	if len(s.sent) != 0 {
		t.Fatalf("expected no replies, got %+v", s.sent)
	}
}

func TestDispatchSkipsEmptyReplies(t *testing.T) {
	router, _ := newTestRouter(&fakeMetrics{reply: domain.Reply{}}, &fakeWizard{})
	s := &fakeSender{}

	router.Dispatch(context.Background(), s, textUpdate("/metrics"), "ref")

	if len(s.sent) != 0 {
		t.Fatalf("expected empty reply to be skipped, got %+v", s.sent)
	}
}

func TestDispatchLogsSendFailure(t *testing.T) {
	router, hook := newTestRouter(&fakeMetrics{}, &fakeWizard{})
	s := &fakeSender{err: errors.New("chat not found")}

	router.Dispatch(context.Background(), s, textUpdate("/ping"), "01HQREF")

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected error entry, got %+v", entry)
	}
	if entry.Data["event"] != "telegram_send_error" || entry.Data["update_ref"] != "01HQREF" || entry.Data["chat_id"] != int64(70) {
		t.Fatalf("unexpected entry data %v", entry.Data)
	}
}
