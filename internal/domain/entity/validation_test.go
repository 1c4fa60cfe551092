package entity

import (
	"strings"
	"testing"
)

func TestValidateSourceURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid https", url: "https://news.example.com/a/1", wantErr: false},
		{name: "valid http", url: "http://news.example.com/a/1", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "no scheme", url: "news.example.com/a/1", wantErr: true},
		{name: "ftp scheme", url: "ftp://news.example.com/a", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
		{name: "too long", url: "https://example.com/" + strings.Repeat("x", 2048), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSourceURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSourceURL(%q) err=%v, wantErr=%v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateArticle(t *testing.T) {
	valid := func() *Article {
		return &Article{
			Title:     "Go 1.25 released",
			SourceURL: "https://news.example.com/go-125",
			Status:    StatusPublished,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Article)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Article) {}, wantErr: false},
		{name: "empty status allowed", mutate: func(a *Article) { a.Status = "" }, wantErr: false},
		{name: "missing title", mutate: func(a *Article) { a.Title = "   " }, wantErr: true},
		{name: "title too long", mutate: func(a *Article) { a.Title = strings.Repeat("t", 513) }, wantErr: true},
		{name: "missing url", mutate: func(a *Article) { a.SourceURL = "" }, wantErr: true},
		{name: "bad status", mutate: func(a *Article) { a.Status = "ARCHIVED" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(a)
			err := ValidateArticle(a)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateArticle err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}

	if err := ValidateArticle(nil); err == nil {
		t.Fatal("ValidateArticle(nil) should fail")
	}
}

func TestValidNotificationType(t *testing.T) {
	for _, typ := range []string{NotificationSystem, NotificationComment, NotificationLike} {
		if !ValidNotificationType(typ) {
			t.Errorf("ValidNotificationType(%q) = false, want true", typ)
		}
	}
	if ValidNotificationType("EMAIL") {
		t.Error("ValidNotificationType(EMAIL) = true, want false")
	}
}
