package typeid

import "go.jetify.com/typeid/v2"

const (
	PrefixBlock   = "block"
	PrefixElement = "element"
	PrefixRun     = "run"
	PrefixSession = "sess"
	PrefixAsset   = "asset"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewRunID() string     { return New(PrefixRun) }
func NewSessionID() string { return New(PrefixSession) }
func NewAssetID() string   { return New(PrefixAsset) }
