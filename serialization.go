package stump

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// recordType tags every persisted hypothesis.
const recordType = "MultiStump"

// savedHypothesis is the persisted form of a Hypothesis. The stump part is
// written first and the feature part second; each part only knows its own
// fields.
type savedHypothesis struct {
	XMLName xml.Name      `xml:"weakhyp"`
	Type    string        `xml:"type,attr"`
	Stump   stumpRecord   `xml:"stump"`
	Feature featureRecord `xml:"feature"`
}

type stumpRecord struct {
	Alpha      float64         `xml:"alpha"`
	Energy     float64         `xml:"energy"`
	Votes      voteRecord      `xml:"vArray"`
	Thresholds thresholdRecord `xml:"thArray"`
}

type voteRecord struct {
	Size   int       `xml:"size,attr"`
	Values []float64 `xml:"v"`
}

type thresholdRecord struct {
	Size   int       `xml:"size,attr"`
	Values []float64 `xml:"th"`
}

type featureRecord struct {
	Type   string `xml:"type"`
	Config string `xml:"config"`
}

// Save writes h to w as a tab-indented record:
//
//	<weakhyp type="MultiStump">
//		<stump>
//			<alpha>0.54</alpha>
//			<energy>0.84</energy>
//			<vArray size="2">
//				<v>1</v>
//				<v>-1</v>
//			</vArray>
//			<thArray size="2">
//				<th>1.5</th>
//				<th>1.5</th>
//			</thArray>
//		</stump>
//		<feature>
//			<type>2h</type>
//			<config>0 0 4 2</config>
//		</feature>
//	</weakhyp>
//
// Floats use the shortest representation that parses back to the same bits,
// so a loaded hypothesis classifies exactly like the saved one.
func (h *Hypothesis[T, D]) Save(w io.Writer) error {
	payload, err := h.feature.MarshalConfig(h.config)
	if err != nil {
		return errors.Wrapf(err, "marshaling %s configuration", h.feature.Name())
	}

	rec := savedHypothesis{
		Type: recordType,
		Stump: stumpRecord{
			Alpha:      h.alpha,
			Energy:     h.energy,
			Votes:      voteRecord{Size: len(h.votes), Values: h.votes},
			Thresholds: thresholdRecord{Size: len(h.thresholds), Values: h.thresholds},
		},
		Feature: featureRecord{
			Type:   h.feature.Name(),
			Config: payload,
		},
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")

	if err := enc.Encode(rec); err != nil {
		return errors.Wrap(err, "encoding hypothesis")
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return errors.Wrap(err, "encoding hypothesis")
	}

	return nil
}

// Load reads one hypothesis written by Save. The feature type is resolved by
// name in catalog; an unknown name fails with ErrSerializationMismatch.
func Load[T Coordinate, D Dataset](r io.Reader, catalog Catalog[T, D]) (*Hypothesis[T, D], error) {
	var rec savedHypothesis
	if err := xml.NewDecoder(r).Decode(&rec); err != nil {
		return nil, errors.Wrap(err, "decoding hypothesis")
	}

	if rec.Type != recordType {
		return nil, errors.Wrapf(ErrMalformedHypothesis, "unexpected record type %q", rec.Type)
	}

	votes := rec.Stump.Votes
	thresholds := rec.Stump.Thresholds

	if votes.Size != len(votes.Values) {
		return nil, errors.Wrapf(ErrMalformedHypothesis, "vote array declares %d values, has %d", votes.Size, len(votes.Values))
	}

	if thresholds.Size != len(thresholds.Values) {
		return nil, errors.Wrapf(ErrMalformedHypothesis, "threshold array declares %d values, has %d", thresholds.Size, len(thresholds.Values))
	}

	if len(votes.Values) != len(thresholds.Values) {
		return nil, errors.Wrapf(ErrMalformedHypothesis, "%d votes for %d thresholds", len(votes.Values), len(thresholds.Values))
	}

	feature, ok := catalog.Lookup(rec.Feature.Type)
	if !ok {
		return nil, errors.Wrapf(ErrSerializationMismatch, "feature type %q", rec.Feature.Type)
	}

	cfg, err := feature.UnmarshalConfig(rec.Feature.Config)
	if err != nil {
		return nil, errors.Wrapf(err, "unmarshaling %s configuration", feature.Name())
	}

	return newHypothesis(feature, cfg, thresholds.Values, votes.Values, rec.Stump.Alpha, rec.Stump.Energy), nil
}

// SaveFile writes h to path, replacing any existing file.
func (h *Hypothesis[T, D]) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating hypothesis file")
	}

	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	return h.Save(f)
}

// LoadFile reads a hypothesis from path.
func LoadFile[T Coordinate, D Dataset](path string, catalog Catalog[T, D]) (h *Hypothesis[T, D], err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening hypothesis file")
	}

	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	return Load(f, catalog)
}
