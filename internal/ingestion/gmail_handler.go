package ingestion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmuoria/resume-matcher/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailHandler downloads resume attachments from a Gmail mailbox
type GmailHandler struct {
	service     *gmail.Service
	fileHandler *FileHandler
}

// GmailAuth locates the OAuth client credentials and the cached token
type GmailAuth struct {
	CredentialsPath string
	TokenPath       string
	// Prompt and Input are used for the one-time authorization code flow
	Prompt io.Writer
	Input  io.Reader
}

// NewGmailHandler creates a Gmail handler, running the authorization code
// flow when no cached token exists
func NewGmailHandler(ctx context.Context, auth GmailAuth, fileHandler *FileHandler) (*GmailHandler, error) {
	b, err := os.ReadFile(auth.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	tok, err := tokenFromFile(auth.TokenPath)
	if err != nil {
		tok, err = getTokenFromWeb(ctx, config, auth.Prompt, auth.Input)
		if err != nil {
			return nil, err
		}
		if err := saveToken(auth.TokenPath, tok); err != nil {
			return nil, err
		}
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	return NewGmailHandlerWithService(srv, fileHandler), nil
}

// NewGmailHandlerWithService wraps an existing Gmail service
func NewGmailHandlerWithService(srv *gmail.Service, fileHandler *FileHandler) *GmailHandler {
	return &GmailHandler{
		service:     srv,
		fileHandler: fileHandler,
	}
}

// getTokenFromWeb requests a token from the web
func getTokenFromWeb(ctx context.Context, config *oauth2.Config, prompt io.Writer, input io.Reader) (*oauth2.Token, error) {
	if prompt == nil || input == nil {
		return nil, fmt.Errorf("no cached Gmail token and no terminal to authorize with")
	}

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(prompt, "Go to the following link in your browser then type the authorization code: \n%v\n", authURL)

	var authCode string
	if _, err := fmt.Fscan(input, &authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

// tokenFromFile retrieves a token from a local file
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// saveToken saves a token to a file path
func saveToken(path string, token *oauth2.Token) error {
	log.Printf("Saving credential file to: %s", path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("unable to create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// FetchAttachments saves the resume attachments of messages matching
// subject into the uploads directory and returns their paths
func (gh *GmailHandler) FetchAttachments(ctx context.Context, subject string) ([]string, error) {
	user := "me"
	query := fmt.Sprintf("subject:%q has:attachment", subject)

	var messages []*gmail.Message
	err := gh.service.Users.Messages.List(user).Q(query).Pages(ctx, func(r *gmail.ListMessagesResponse) error {
		messages = append(messages, r.Messages...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}

	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages found with subject: %s", subject)
	}

	var saved []string
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		message, err := gh.service.Users.Messages.Get(user, msg.Id).Context(ctx).Do()
		if err != nil {
			log.Printf("Unable to retrieve message %s: %v", msg.Id, err)
			continue
		}

		senderName := extractSenderName(message)
		for _, part := range attachmentParts(message.Payload) {
			ext := strings.ToLower(filepath.Ext(part.Filename))
			if _, ok := AllowedExtensions[ext]; !ok {
				log.Printf("Skipping attachment %s from %s: unsupported type", part.Filename, senderName)
				continue
			}

			attachment, err := gh.service.Users.Messages.Attachments.Get(user, msg.Id, part.Body.AttachmentId).Context(ctx).Do()
			if err != nil {
				log.Printf("Unable to retrieve attachment: %v", err)
				continue
			}

			data, err := decodeAttachment(attachment.Data)
			if err != nil {
				log.Printf("Unable to decode attachment: %v", err)
				continue
			}

			path, err := gh.fileHandler.SaveUploadedFile(AttachmentFilename(senderName, part.Filename), bytes.NewReader(data))
			if err != nil {
				log.Printf("Unable to write attachment %s: %v", part.Filename, err)
				continue
			}

			log.Printf("Downloaded: %s", filepath.Base(path))
			saved = append(saved, path)
		}
	}

	return saved, nil
}

// FetchResumes replaces the contents of the uploads directory with the
// resume attachments of messages matching subject and loads them
func (gh *GmailHandler) FetchResumes(ctx context.Context, subject string) ([]models.ResumeFile, error) {
	if err := gh.fileHandler.ClearUploads(); err != nil {
		return nil, err
	}

	paths, err := gh.FetchAttachments(ctx, subject)
	if err != nil {
		return nil, err
	}
	log.Printf("Saved %d attachments to %s", len(paths), gh.fileHandler.UploadsDir())

	return gh.fileHandler.LoadUploads()
}

// attachmentParts walks nested multipart payloads
func attachmentParts(part *gmail.MessagePart) []*gmail.MessagePart {
	if part == nil {
		return nil
	}
	var out []*gmail.MessagePart
	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		out = append(out, part)
	}
	for _, p := range part.Parts {
		out = append(out, attachmentParts(p)...)
	}
	return out
}

func decodeAttachment(data string) ([]byte, error) {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	return base64.RawURLEncoding.DecodeString(data)
}

// AttachmentFilename prefixes an attachment with its sender so resumes
// with the same file name from different people don't collide
func AttachmentFilename(sender, filename string) string {
	return fmt.Sprintf("%s_%s", sender, filepath.Base(filename))
}

// extractSenderName extracts the sender's name from email headers
func extractSenderName(message *gmail.Message) string {
	if message.Payload == nil {
		return "Unknown"
	}
	for _, header := range message.Payload.Headers {
		if header.Name == "From" {
			// Parse "Name <email@example.com>" format
			from := header.Value
			if idx := strings.Index(from, "<"); idx > 0 {
				name := strings.Trim(strings.TrimSpace(from[:idx]), `"`)
				return strings.ReplaceAll(name, " ", "")
			}
			// If no name, use email prefix
			if idx := strings.Index(from, "@"); idx > 0 {
				return from[:idx]
			}
			return "Unknown"
		}
	}
	return "Unknown"
}
