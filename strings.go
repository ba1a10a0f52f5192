package wsgox

// defaultServerName is the Server response header's product token
// when Server.Name is unset, matching fasthttp's strings.go default
// product-token habit (there: "fasthttp server").
const defaultServerName = "wsgox"
