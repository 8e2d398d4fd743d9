package services

import (
	"encoding/json"
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"io"
	"strings"
)

var (
	errNoJSONObject  = errors.New("reply contains no json object")
	errAmbiguousJSON = errors.New("reply contains more than one json value")
)

type parsedReply struct {
	ProfileJobs []models.JobEntry          `json:"profileJobs"`
	NearbyJobs  []models.JobEntry          `json:"nearbyJobs"`
	Investment  *models.InvestmentStrategy `json:"investment"`
}

// ExtractJSON returns the text between the first '{' and the last '}'.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", errNoJSONObject
	}
	return text[start : end+1], nil
}

// parseReply reads the three payload fields, missing ones become empty. Entries with fields of an
// unexpected type are kept as far as they could be decoded.
func parseReply(text string) (parsedReply, error) {

	span, err := ExtractJSON(text)
	if err != nil {
		return parsedReply{}, err
	}

	decoder := json.NewDecoder(strings.NewReader(span))

	var reply parsedReply
	if err = decoder.Decode(&reply); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return parsedReply{}, errors.Wrap(err, "invalid json in reply")
		}
		log.Warnf("reply field %q has unexpected type %v, keeping partially decoded value", typeErr.Field, typeErr.Value)
	}

	if err = decoder.Decode(&struct{}{}); err != io.EOF {
		return parsedReply{}, errAmbiguousJSON
	}

	if reply.ProfileJobs == nil {
		reply.ProfileJobs = []models.JobEntry{}
	}
	if reply.NearbyJobs == nil {
		reply.NearbyJobs = []models.JobEntry{}
	}

	return reply, nil
}
