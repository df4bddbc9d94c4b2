package emailsvc

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/joesive47/skillnexus-lms-sub005/core"
)

var (
	// SentMessages records every message "sent" by the console service so
	// tests can assert on them.
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
	sendAsync        bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService() core.EmailService {
	return &consoleService{
		defaultFromEmail: core.Conf.DefaultFromEmail,
		subjPrefix:       "[" + core.Conf.AppName + "] ",
		sendAsync:        true,
	}
}

// NewConsoleServiceMock sends synchronously and prints nothing; for tests.
func NewConsoleServiceMock() core.EmailService {
	return &consoleService{
		defaultFromEmail: core.Conf.DefaultFromEmail,
		subjPrefix:       "[" + core.Conf.AppName + "] ",
		disableOutput:    true,
	}
}

// ClearSentMessages resets the recorded messages between tests.
func ClearSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if svc.sendAsync {
			go svc.sendMessage(msg)
		} else {
			svc.sendMessage(msg)
		}
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		log.Printf("%+v", errors.Wrap(err, "rendering email"))
		return
	}
	if msg.HasRecipients() && msg.HasContent() {
		svc.send(*msg)
		mu.Lock()
		SentMessages = append(SentMessages, *msg)
		mu.Unlock()
	}
}

func (svc consoleService) send(msg core.EmailMessage) {
	if svc.disableOutput {
		return
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("-", 70) + "\n")
	sb.WriteString(fmt.Sprintf("From: %s\n", svc.defaultFromEmail.String()))
	sb.WriteString(fmt.Sprintf("To: %s\n", joinAddresses(msg.To)))
	if len(msg.Cc) > 0 {
		sb.WriteString(fmt.Sprintf("Cc: %s\n", joinAddresses(msg.Cc)))
	}
	if len(msg.Bcc) > 0 {
		sb.WriteString(fmt.Sprintf("Bcc: %s\n", joinAddresses(msg.Bcc)))
	}
	sb.WriteString(fmt.Sprintf("Subject: %s\n\n", svc.subjPrefix+msg.Subject))
	sb.WriteString(msg.TextContent + "\n")
	sb.WriteString(strings.Repeat("-", 70))
	fmt.Println(sb.String())
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		strs = append(strs, addr.String())
	}
	return strings.Join(strs, ", ")
}
