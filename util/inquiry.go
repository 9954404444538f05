package util

// InquiryType is a coded contact category and its display label
type InquiryType struct {
	Key   string
	Label string
}

const UnselectedInquiryLabel = "Not selected"

// InquiryTypes in display order
var InquiryTypes = []InquiryType{
	{Key: "website", Label: "Website production"},
	{Key: "lp", Label: "Landing page production"},
	{Key: "cms", Label: "CMS setup / migration"},
	{Key: "coding", Label: "Coding only"},
	{Key: "other", Label: "Other"},
}

var inquiryTypeLabels = func() map[string]string {
	m := make(map[string]string, len(InquiryTypes))
	for _, it := range InquiryTypes {
		m[it.Key] = it.Label
	}
	return m
}()

// GetInquiryTypeLabel returns the label for key, or the unselected label
func GetInquiryTypeLabel(key string) string {
	if label, ok := inquiryTypeLabels[key]; ok {
		return label
	}
	return UnselectedInquiryLabel
}
