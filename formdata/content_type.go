package formdata

import "mime"

const formDataMediaType = "multipart/form-data"

// BoundaryFromContentType extracts the boundary token from a multipart/form-data Content-Type
func BoundaryFromContentType(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != formDataMediaType {
		return "", ErrNotMultipart
	}

	boundary := params["boundary"]
	if len(boundary) == 0 {
		return "", ErrMissingBoundary
	}

	return boundary, nil
}
