package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
)

// newClient constructs a client for the node api at the url stored under
// the key.
func newClient(key string) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimSuffix(viper.GetString(key), "/")).
		SetTimeout(viper.GetDuration("timeout")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

// call executes the request and returns the response body. Error responses
// from the node are converted into an error.
func call(c *resty.Client, method string, path string, body any) ([]byte, error) {
	var er errs.Response

	req := c.R().SetError(&er)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("calling node: %w", err)
	}

	if resp.IsError() {
		if er.Error == "" {
			return nil, fmt.Errorf("node returned %s", resp.Status())
		}

		msg := er.Error
		if len(er.Fields) > 0 {
			fields := make([]string, 0, len(er.Fields))
			for field, text := range er.Fields {
				fields = append(fields, field+": "+text)
			}
			sort.Strings(fields)
			msg += ": " + strings.Join(fields, ", ")
		}

		return nil, fmt.Errorf("node returned %s: %s", resp.Status(), msg)
	}

	return resp.Body(), nil
}
