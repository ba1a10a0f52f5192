package wsgienv

import (
	"testing"

	"github.com/wsgox/wsgox/errwriter"
	"github.com/wsgox/wsgox/header"
	"github.com/wsgox/wsgox/message"
	"github.com/wsgox/wsgox/werr"
)

func TestBuildRekeysHeaders(t *testing.T) {
	req := &message.Request{
		Method: "GET", Path: "/app/path/to/resource", Query: "query=string",
		Major: 1, Minor: 1,
		Headers: header.Fields{}.
			Append("Host", "localhost:8000").
			Append("Content-Type", "text/plain").
			Append("Content-Length", "123"),
	}
	env, err := Build(req, Server{Name: "localhost", Port: "8000"}, "/app", errwriter.New())
	if err != nil {
		t.Fatal(err)
	}
	if env["SCRIPT_NAME"] != "/app" || env["PATH_INFO"] != "/path/to/resource" {
		t.Fatalf("unexpected script/path split: %v %v", env["SCRIPT_NAME"], env["PATH_INFO"])
	}
	if env["HTTP_HOST"] != "localhost:8000" {
		t.Fatalf("expected HTTP_HOST, got %v", env["HTTP_HOST"])
	}
	if env["CONTENT_TYPE"] != "text/plain" || env["CONTENT_LENGTH"] != "123" {
		t.Fatalf("expected bare CONTENT_TYPE/LENGTH, got %v %v", env["CONTENT_TYPE"], env["CONTENT_LENGTH"])
	}
	if _, ok := env["HTTP_CONTENT_TYPE"]; ok {
		t.Fatal("CONTENT_TYPE must not also appear as HTTP_CONTENT_TYPE")
	}
}

func TestBuildJoinsDuplicateHeaders(t *testing.T) {
	req := &message.Request{
		Headers: header.Fields{}.Append("X-Forwarded-For", "1.1.1.1").Append("X-Forwarded-For", "2.2.2.2"),
	}
	env, err := Build(req, Server{}, "", errwriter.New())
	if err != nil {
		t.Fatal(err)
	}
	if env["HTTP_X_FORWARDED_FOR"] != "1.1.1.1,2.2.2.2" {
		t.Fatalf("got %v", env["HTTP_X_FORWARDED_FOR"])
	}
}

func TestParsePathRejectsNonMatchingPrefix(t *testing.T) {
	_, _, err := ParsePath("/other", "/app")
	if !werr.Is(err, werr.ConfigurationProblem) {
		t.Fatalf("expected ConfigurationProblem, got %v", err)
	}
}

func TestParsePathEmptyScriptName(t *testing.T) {
	script, info, err := ParsePath("/a/b", "")
	if err != nil {
		t.Fatal(err)
	}
	if script != "" || info != "/a/b" {
		t.Fatalf("got %q %q", script, info)
	}
}
