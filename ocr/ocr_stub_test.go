//go:build !ocr

package ocr

import (
	"errors"
	"testing"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

func TestNewReturnsError(t *testing.T) {
	client, err := New()
	if err == nil {
		t.Error("Expected error from New() when recognition is disabled")
	}
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Expected ErrOCRNotEnabled, got: %v", err)
	}
	if client != nil {
		t.Error("Expected nil client when recognition is disabled")
	}
}

func TestCloseOnNilClient(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client should not error: %v", err)
	}
}

func TestStubOperationsReturnSentinel(t *testing.T) {
	var client *Client

	if err := client.SetLanguage("eng"); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("SetLanguage error = %v", err)
	}
	if err := client.SetPageSegMode(PSM_AUTO); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("SetPageSegMode error = %v", err)
	}
	if _, err := client.RecognizePage(nil, 1); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("RecognizePage error = %v", err)
	}
	if _, err := client.RecognizePages(nil, model.SourceDocument, 300); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("RecognizePages error = %v", err)
	}
}
