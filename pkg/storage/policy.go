package storage

import (
	"encoding/json"
	"fmt"
	"strings"
)

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Sid       string          `json:"Sid"`
	Effect    string          `json:"Effect"`
	Principal policyPrincipal `json:"Principal"`
	Action    []string        `json:"Action"`
	Resource  []string        `json:"Resource"`
}

type policyPrincipal struct {
	AWS []string `json:"AWS"`
}

// PublicReadPolicy renders a bucket policy that allows anonymous s3:GetObject
// on keys matching the given patterns (e.g. "*/pictures/*"). Objects outside
// the patterns stay private.
func PublicReadPolicy(bucket string, patterns ...string) (string, error) {
	if bucket == "" || len(patterns) == 0 {
		return "", fmt.Errorf("%w: policy needs a bucket and at least one pattern", ErrInvalidConfig)
	}

	resources := make([]string, len(patterns))
	for i, p := range patterns {
		resources[i] = fmt.Sprintf("arn:aws:s3:::%s/%s", bucket, strings.TrimPrefix(p, "/"))
	}

	doc := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Sid:       "PublicAccess",
			Effect:    "Allow",
			Principal: policyPrincipal{AWS: []string{"*"}},
			Action:    []string{"s3:GetObject"},
			Resource:  resources,
		}},
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPolicyFailed, err)
	}
	return string(b), nil
}
