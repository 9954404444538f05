package email

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"html"
	"math"
	"math/big"
	"net"
	"net/mail"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/microcosm-cc/bluemonday"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/types"
)

const ProviderSmtp = "smtp"

var (
	maxBigInt = big.NewInt(math.MaxInt64)

	// block level closers that become line breaks in the text alternative
	blockBreaks = strings.NewReplacer(
		"<br>", "\n", "<br/>", "\n", "<br />", "\n",
		"</p>", "</p>\n", "</tr>", "</tr>\n", "</h2>", "</h2>\n", "</h3>", "</h3>\n",
		"</th>", "</th> ", "<hr", "\n<hr",
	)
)

// SmtpSender relays MIME messages built with enmime to an SMTP submission server
type SmtpSender struct {
	transport enmime.Sender
	hostname  string
}

func NewSmtpSender(host string, port int, username string, password string) *SmtpSender {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SmtpSender{transport: enmime.NewSMTP(addr, auth), hostname: messageIDHost()}
}

func messageIDHost() string {
	if global.Conf.Host != "" {
		return global.Conf.Host
	}
	return "localhost"
}

func (s *SmtpSender) Send(ctx context.Context, msg *types.OutgoingEmail) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrSendFailed, err.Error())
	}
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return "", fmt.Errorf("%w: invalid from address: %s", types.ErrSendFailed, err.Error())
	}
	raw, id, err := ToMime(msg, s.hostname)
	if err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrSendFailed, err.Error())
	}
	if err := s.transport.Send(from.Address, msg.To, raw); err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrSendFailed, err.Error())
	}
	return id, nil
}

// HtmlToText strips markup for the text/plain alternative, keeping one line per block
func HtmlToText(body string) string {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	clean := p.Sanitize(blockBreaks.Replace(body))
	clean = html.UnescapeString(clean)

	var lines []string
	for _, line := range strings.Split(clean, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// generateRFC2822MessageID returns a Message-ID of the form
// <nanos.pid.random@hostname>
func generateRFC2822MessageID(hostname string) (string, error) {
	t := time.Now().UnixNano()
	pid := os.Getpid()
	rint, err := rand.Int(rand.Reader, maxBigInt)
	if err != nil {
		return "", err
	}
	if hostname == "" {
		return "", fmt.Errorf("empty hostname")
	}
	return fmt.Sprintf("<%d.%d.%d@%s>", t, pid, rint, hostname), nil
}

// ToMime converts an outgoing email to a multipart/alternative MIME message and
// returns it together with its Message-ID
func ToMime(msg *types.OutgoingEmail, hostname string) ([]byte, string, error) {
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return nil, "", err
	}
	to := make([]mail.Address, 0, len(msg.To))
	for _, addr := range msg.To {
		a, aErr := mail.ParseAddress(addr)
		if aErr != nil {
			return nil, "", aErr
		}
		to = append(to, *a)
	}

	text := msg.Text
	if text == "" {
		text = HtmlToText(msg.HTML)
	}

	outgoingMime := enmime.Builder().
		From(from.Name, from.Address).
		Subject(msg.Subject).
		ToAddrs(to).
		Text([]byte(text)).
		Date(time.Now()).
		HTML([]byte(msg.HTML))

	outgoingMime = outgoingMime.Header("X-Mailer", "webmaka")

	id, idErr := generateRFC2822MessageID(hostname)
	if idErr != nil {
		global.Logger.Log("error", "error generating message id", "error", idErr)
		return nil, "", idErr
	}
	outgoingMime = outgoingMime.Header("Message-ID", id)

	ep, err := outgoingMime.Build()
	if err != nil {
		global.Logger.Log("error", "error building mime message", "error", err)
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := ep.Encode(&buf); err != nil {
		global.Logger.Log("error", "error encoding mime message", "error", err)
		return nil, "", err
	}
	return buf.Bytes(), id, nil
}
