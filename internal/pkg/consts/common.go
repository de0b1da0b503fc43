package consts

const (
	MimePrefixImage = "image"
)
