package notion

import "strings"

// errorResponse is the body Notion returns with non-2xx statuses
type errorResponse struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type pageResponse struct {
	Object string `json:"object"`
	ID     string `json:"id"`
	URL    string `json:"url"`
}

type databaseResponse struct {
	Object string     `json:"object"`
	ID     string     `json:"id"`
	URL    string     `json:"url"`
	Title  []richText `json:"title"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

func plainText(parts []richText) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.PlainText)
	}
	return b.String()
}
