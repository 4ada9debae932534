package imap

import (
	"crypto/tls"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"freshops/internal"
	"freshops/internal/config"
	"freshops/internal/connectors"
)

// Connector reads the intake mailbox over IMAP. Suppliers and sales staff
// mail into a shared account; the connector pulls unseen messages inside
// the requested window and leaves flagging to configuration, so a dry run
// against a live mailbox changes nothing.
type Connector struct {
	host     string
	port     int
	secure   bool
	user     string
	password string
	markSeen bool
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("IMAP_HOST", cfg.IMAPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_USER", cfg.IMAPUser); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_PASSWORD", cfg.IMAPPassword); err != nil {
		return nil, err
	}

	return &Connector{
		host:     cfg.IMAPHost,
		port:     cfg.IMAPPort,
		secure:   cfg.IMAPSecure,
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		markSeen: cfg.IMAPMarkSeen,
	}, nil
}

func (c *Connector) Fetch(req connectors.FetchRequest) ([]internal.FetchedMailMessage, error) {
	client, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer client.Logout()

	if _, err := client.Select(req.Label, false); err != nil {
		return nil, fmt.Errorf("select intake mailbox %q: %w", req.Label, err)
	}

	ids, err := client.Search(intakeCriteria(req.Since))
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	// Newest first when the mailbox backlog exceeds the batch: fresh orders
	// matter more than stale ones.
	if req.Max > 0 && len(ids) > req.Max {
		ids = ids[len(ids)-req.Max:]
	}

	return c.collect(client, ids)
}

func (c *Connector) dial() (*imapclient.Client, error) {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	var client *imapclient.Client
	var err error
	if c.secure {
		client, err = imapclient.DialTLS(addr, &tls.Config{ServerName: c.host})
	} else {
		client, err = imapclient.Dial(addr)
	}
	if err != nil {
		return nil, err
	}
	if err := client.Login(c.user, c.password); err != nil {
		client.Logout()
		return nil, err
	}
	return client, nil
}

// intakeCriteria asks the server for unseen mail inside the window. IMAP
// SINCE is date-granular, so same-day refetches can return messages the
// store already holds; the fetch service deduplicates those by hash.
func intakeCriteria(since time.Time) *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if !since.IsZero() {
		criteria.Since = since
	}
	return criteria
}

func (c *Connector) collect(client *imapclient.Client, ids []uint32) ([]internal.FetchedMailMessage, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, section.FetchItem()}
	messages := make(chan *imap.Message, len(ids))
	fetchDone := make(chan error, 1)
	go func() { fetchDone <- client.Fetch(seqset, items, messages) }()

	out := make([]internal.FetchedMailMessage, 0, len(ids))
	for msg := range messages {
		fetched, ok, err := readMessage(msg, section)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, fetched)

		if c.markSeen {
			if err := flagSeen(client, msg.SeqNum); err != nil {
				return nil, err
			}
		}
	}

	if err := <-fetchDone; err != nil {
		return nil, err
	}
	return out, nil
}

// readMessage turns one fetched IMAP message into the provider-neutral
// shape the mail store persists. Messages without a body section are
// skipped rather than failing the batch.
func readMessage(msg *imap.Message, section *imap.BodySectionName) (internal.FetchedMailMessage, bool, error) {
	if msg == nil {
		return internal.FetchedMailMessage{}, false, nil
	}
	body := msg.GetBody(section)
	if body == nil {
		return internal.FetchedMailMessage{}, false, nil
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return internal.FetchedMailMessage{}, false, err
	}

	messageID := ""
	subject := ""
	sender := ""
	if msg.Envelope != nil {
		messageID = msg.Envelope.MessageId
		subject = msg.Envelope.Subject
		sender = senderLine(msg.Envelope.From)
	}
	if messageID == "" {
		messageID = fmt.Sprintf("imap-%d", msg.Uid)
	}

	received := time.Now().UTC()
	if !msg.InternalDate.IsZero() {
		received = msg.InternalDate.UTC()
	}

	return internal.FetchedMailMessage{
		Provider:   "imap",
		MessageID:  messageID,
		Subject:    subject,
		From:       sender,
		ReceivedAt: received.Format(time.RFC3339),
		Raw:        raw,
	}, true, nil
}

func flagSeen(client *imapclient.Client, seqNum uint32) error {
	single := new(imap.SeqSet)
	single.AddNum(seqNum)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	return client.Store(single, item, []interface{}{imap.SeenFlag}, nil)
}

func senderLine(addrs []*imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == nil {
			continue
		}
		email := strings.Trim(a.MailboxName+"@"+a.HostName, "@")
		if a.PersonalName != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.PersonalName, email))
		} else {
			parts = append(parts, email)
		}
	}
	return strings.Join(parts, ", ")
}
