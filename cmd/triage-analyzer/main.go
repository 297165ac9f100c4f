package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/quickemail/email-triage/internal/core"
	"github.com/quickemail/email-triage/internal/di"
	"github.com/quickemail/email-triage/internal/textgen"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the analysis
	if err := container.Invoke(runAnalysis); err != nil {
		fmt.Printf("Analysis error: %v\n", err)
		os.Exit(1)
	}
}

// runAnalysis reads the email, runs it through the triage pipeline and
// prints a report
func runAnalysis(
	flags *di.CLIFlags,
	logger *zap.Logger,
	handle *textgen.Handle,
	service *core.TriageService,
	extractor core.AttachmentExtractor,
) error {
	defer logger.Sync()

	// Read email body from file or stdin
	var bodyReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file %s: %w", flags.InputFile, err)
		}
		defer file.Close()
		bodyReader = file
		logger.Info("Reading email body from file", zap.String("file", flags.InputFile))
	} else {
		bodyReader = os.Stdin
		logger.Info("Reading email body from stdin")
	}

	bodyBytes, err := io.ReadAll(bufio.NewReader(bodyReader))
	if err != nil {
		return fmt.Errorf("failed to read email body: %w", err)
	}

	// Extract attachment text when present
	var attachmentText string
	if flags.AttachmentFile != "" {
		data, err := os.ReadFile(flags.AttachmentFile)
		if err != nil {
			return fmt.Errorf("failed to read attachment %s: %w", flags.AttachmentFile, err)
		}
		attachmentText, err = extractor.ExtractText(filepath.Base(flags.AttachmentFile), data)
		if err != nil {
			return fmt.Errorf("failed to extract attachment text: %w", err)
		}
		logger.Info("Extracted attachment text",
			zap.String("file", flags.AttachmentFile),
			zap.Int("chars", len(attachmentText)))
	}

	// Load the backend. A failure still yields a result through the
	// fallback heuristic.
	if err := handle.Load(context.Background()); err != nil {
		logger.Warn("Model unavailable, classifying with the fallback heuristic", zap.Error(err))
	}

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("Sender: %s\n", flags.Sender)
	fmt.Printf("Subject: %s\n", flags.Subject)
	fmt.Printf("Body length: %d bytes\n", len(bodyBytes))
	if attachmentText != "" {
		fmt.Printf("Attachment text length: %d chars\n", len(attachmentText))
	}
	fmt.Printf("\n=== Analysis ===\n")
	fmt.Printf("Provider: %s\n", flags.Provider)
	fmt.Printf("Reply mode: %s\n", service.ReplyMode())

	startTime := time.Now()
	outcome := service.Analyze(context.Background(), &core.ClassificationRequest{
		SenderEmail:    flags.Sender,
		Subject:        flags.Subject,
		Body:           string(bodyBytes),
		AttachmentText: attachmentText,
	})
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Category: %s\n", outcome.Result.Category)
	fmt.Printf("Confidence: %.4f\n", outcome.Result.Confidence)
	fmt.Printf("Source: %s\n", outcome.Result.Source)
	fmt.Printf("Suggested reply: %s\n", outcome.SuggestedReply)
	fmt.Printf("Processing time: %v\n", duration)

	// Release the backend
	if err := handle.Close(); err != nil {
		logger.Error("Failed to close text generation handle", zap.Error(err))
	}

	return nil
}
