package report

import (
	"math"
	"slices"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"volmeasure/pkg/errs"
)

// SOP classes.
const (
	ComprehensiveSRStorage  = "1.2.840.10008.5.1.4.1.1.88.33"
	SecondaryCaptureStorage = "1.2.840.10008.5.1.4.1.1.7"
)

var (
	tagSOPClassUID                  = tag.Tag{Group: 0x0008, Element: 0x0016}
	tagSOPInstanceUID               = tag.Tag{Group: 0x0008, Element: 0x0018}
	tagModality                     = tag.Tag{Group: 0x0008, Element: 0x0060}
	tagCodeValue                    = tag.Tag{Group: 0x0008, Element: 0x0100}
	tagCodeMeaning                  = tag.Tag{Group: 0x0008, Element: 0x0104}
	tagReferencedSOPClassUID        = tag.Tag{Group: 0x0008, Element: 0x1150}
	tagReferencedSOPInstanceUID     = tag.Tag{Group: 0x0008, Element: 0x1155}
	tagReferencedFrameNumber        = tag.Tag{Group: 0x0008, Element: 0x1160}
	tagReferencedSOPSequence        = tag.Tag{Group: 0x0008, Element: 0x1199}
	tagImagePositionPatient         = tag.Tag{Group: 0x0020, Element: 0x0032}
	tagImageOrientationPatient      = tag.Tag{Group: 0x0020, Element: 0x0037}
	tagPlanePositionSequence        = tag.Tag{Group: 0x0020, Element: 0x9113}
	tagPlaneOrientationSequence     = tag.Tag{Group: 0x0020, Element: 0x9116}
	tagMeasurementUnitsCodeSequence = tag.Tag{Group: 0x0040, Element: 0x08EA}
	tagConceptNameCodeSequence      = tag.Tag{Group: 0x0040, Element: 0xA043}
	tagUID                          = tag.Tag{Group: 0x0040, Element: 0xA124}
	tagTextValue                    = tag.Tag{Group: 0x0040, Element: 0xA160}
	tagMeasuredValueSequence        = tag.Tag{Group: 0x0040, Element: 0xA300}
	tagNumericValue                 = tag.Tag{Group: 0x0040, Element: 0xA30A}
	tagContentSequence              = tag.Tag{Group: 0x0040, Element: 0xA730}
	tagRecommendedDisplayCIELab     = tag.Tag{Group: 0x0062, Element: 0x000D}
	tagAnchorPoint                  = tag.Tag{Group: 0x0070, Element: 0x0014}
	tagGraphicData                  = tag.Tag{Group: 0x0070, Element: 0x0022}
	tagGraphicType                  = tag.Tag{Group: 0x0070, Element: 0x0023}
)

// elements collects new elements and the first construction error.
type elements struct {
	list []*dicom.Element
	err  error
}

func (e *elements) add(t tag.Tag, data any) {
	if e.err != nil {
		return
	}
	el, err := dicom.NewElement(t, data)
	if err != nil {
		e.err = errs.Wrap(err, "report", "ToDataset", "create element "+t.String())
		return
	}
	e.list = append(e.list, el)
}

func (e *elements) addString(t tag.Tag, v string) {
	if v != "" {
		e.add(t, []string{v})
	}
}

func (e *elements) addMeta(meta map[string]string) {
	if len(meta) == 0 {
		return
	}
	var items [][]*dicom.Element
	for _, k := range sortedKeys(meta) {
		var item elements
		item.add(tagConceptNameCodeSequence, [][]*dicom.Element{codeItem(&item, "", k)})
		item.addString(tagTextValue, meta[k])
		if item.err != nil {
			e.err = item.err
			return
		}
		items = append(items, item.list)
	}
	e.add(tagContentSequence, items)
}

// codeItem returns the elements of a code sequence item.
func codeItem(parent *elements, value, meaning string) []*dicom.Element {
	var code elements
	code.addString(tagCodeValue, value)
	code.addString(tagCodeMeaning, meaning)
	if code.err != nil && parent.err == nil {
		parent.err = code.err
	}
	return code.list
}

// ToDataset encodes a document as an in-memory DICOM dataset.
func ToDataset(doc *Document) (*dicom.Dataset, error) {
	if doc == nil {
		return nil, errs.Wrap(errs.Invalid("nil document"), "report", "ToDataset", "check document")
	}
	var root elements
	sopClass := doc.SOPClassUID
	if sopClass == "" {
		sopClass = ComprehensiveSRStorage
	}
	root.addString(tagSOPClassUID, sopClass)
	root.addString(tagSOPInstanceUID, doc.SOPInstanceUID)
	root.addString(tagModality, doc.Modality)
	if doc.Colour != "" {
		lab, err := encodeColour(doc.Colour)
		if err != nil {
			return nil, err
		}
		root.add(tagRecommendedDisplayCIELab, lab)
	}

	items := make([][]*dicom.Element, 0, len(doc.Items)+1)
	for _, item := range doc.Items {
		els, err := itemElements(item)
		if err != nil {
			return nil, err
		}
		items = append(items, els)
	}
	if len(doc.Meta) != 0 {
		var meta elements
		meta.add(tagConceptNameCodeSequence, [][]*dicom.Element{codeItem(&meta, "", "meta")})
		meta.addMeta(doc.Meta)
		if meta.err != nil {
			return nil, meta.err
		}
		items = append(items, meta.list)
	}
	root.add(tagContentSequence, items)
	if root.err != nil {
		return nil, root.err
	}
	return &dicom.Dataset{Elements: root.list}, nil
}

func itemElements(item Item) ([]*dicom.Element, error) {
	var e elements
	e.add(tagConceptNameCodeSequence, [][]*dicom.Element{codeItem(&e, item.GraphicType, item.Kind)})
	e.addString(tagUID, item.TrackingUID)

	if item.ReferencedSOPInstanceUID != "" {
		var ref elements
		ref.addString(tagReferencedSOPClassUID, item.ReferencedSOPClassUID)
		ref.addString(tagReferencedSOPInstanceUID, item.ReferencedSOPInstanceUID)
		if item.ReferencedFrameNumber > 0 {
			ref.add(tagReferencedFrameNumber, []string{strconv.Itoa(item.ReferencedFrameNumber)})
		}
		if ref.err != nil {
			return nil, ref.err
		}
		e.add(tagReferencedSOPSequence, [][]*dicom.Element{ref.list})
	}

	e.addString(tagGraphicType, item.GraphicType)
	e.add(tagGraphicData, slices.Clone(item.GraphicData))

	if len(item.Measurements) != 0 {
		var measured [][]*dicom.Element
		for _, m := range item.Measurements {
			var mv elements
			mv.addString(tagCodeMeaning, m.Name)
			mv.add(tagNumericValue, []string{formatDS(m.Value)})
			mv.add(tagMeasurementUnitsCodeSequence, [][]*dicom.Element{codeItem(&mv, m.Unit, "")})
			if mv.err != nil {
				return nil, mv.err
			}
			measured = append(measured, mv.list)
		}
		e.add(tagMeasuredValueSequence, measured)
	}

	e.addString(tagTextValue, item.TextExpr)
	if item.Colour != "" {
		lab, err := encodeColour(item.Colour)
		if err != nil {
			return nil, err
		}
		e.add(tagRecommendedDisplayCIELab, lab)
	}
	if len(item.LabelPosition) == 2 {
		e.add(tagAnchorPoint, slices.Clone(item.LabelPosition))
	}
	if len(item.PlaneOrigin) == 3 {
		e.add(tagImagePositionPatient, formatDSs(item.PlaneOrigin))
	}
	if len(item.PlanePoints) == 9 {
		var pos, orient elements
		pos.add(tagImagePositionPatient, formatDSs(item.PlanePoints[:3]))
		orient.add(tagImageOrientationPatient, formatDSs(item.PlanePoints[3:]))
		if pos.err != nil || orient.err != nil {
			return nil, errs.Wrap(errs.ErrInvalidInput, "report", "ToDataset", "encode plane points")
		}
		e.add(tagPlanePositionSequence, [][]*dicom.Element{pos.list})
		e.add(tagPlaneOrientationSequence, [][]*dicom.Element{orient.list})
	}
	e.addMeta(item.Meta)
	return e.list, e.err
}

// FromDataset decodes a dataset written by ToDataset.
func FromDataset(ds *dicom.Dataset) (*Document, error) {
	if ds == nil {
		return nil, errs.Wrap(errs.Invalid("nil dataset"), "report", "FromDataset", "check dataset")
	}
	doc := &Document{
		SOPClassUID:    firstString(ds.Elements, tagSOPClassUID),
		SOPInstanceUID: firstString(ds.Elements, tagSOPInstanceUID),
		Modality:       firstString(ds.Elements, tagModality),
	}
	if lab := ints(find(ds.Elements, tagRecommendedDisplayCIELab)); len(lab) == 3 {
		doc.Colour = decodeColour(lab)
	}
	for _, item := range sequence(find(ds.Elements, tagContentSequence)) {
		meaning := firstString(firstItem(item, tagConceptNameCodeSequence), tagCodeMeaning)
		if meaning == "meta" && find(item, tagGraphicData) == nil {
			doc.Meta = readMeta(item)
			continue
		}
		it, err := readItem(item)
		if err != nil {
			return nil, err
		}
		doc.Items = append(doc.Items, it)
	}
	return doc, nil
}

func readItem(els []*dicom.Element) (Item, error) {
	code := firstItem(els, tagConceptNameCodeSequence)
	item := Item{
		TrackingUID: firstString(els, tagUID),
		Kind:        firstString(code, tagCodeMeaning),
		GraphicType: firstString(els, tagGraphicType),
		GraphicData: floats(find(els, tagGraphicData)),
		TextExpr:    firstString(els, tagTextValue),
		Meta:        readMeta(els),
	}
	if ref := firstItem(els, tagReferencedSOPSequence); ref != nil {
		item.ReferencedSOPClassUID = firstString(ref, tagReferencedSOPClassUID)
		item.ReferencedSOPInstanceUID = firstString(ref, tagReferencedSOPInstanceUID)
		if s := firstString(ref, tagReferencedFrameNumber); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return Item{}, errs.Wrap(errs.ErrParsingFailed, "report", "FromDataset", "read frame number "+s)
			}
			item.ReferencedFrameNumber = n
		}
	}
	for _, mv := range sequence(find(els, tagMeasuredValueSequence)) {
		v, err := parseDS(firstString(mv, tagNumericValue))
		if err != nil {
			return Item{}, err
		}
		item.Measurements = append(item.Measurements, Measurement{
			Name:  firstString(mv, tagCodeMeaning),
			Value: v,
			Unit:  firstString(firstItem(mv, tagMeasurementUnitsCodeSequence), tagCodeValue),
		})
	}
	if lab := ints(find(els, tagRecommendedDisplayCIELab)); len(lab) == 3 {
		item.Colour = decodeColour(lab)
	}
	if p := floats(find(els, tagAnchorPoint)); len(p) == 2 {
		item.LabelPosition = p
	}
	var err error
	if item.PlaneOrigin, err = parseDSs(stringValues(find(els, tagImagePositionPatient))); err != nil {
		return Item{}, err
	}
	pos := firstItem(els, tagPlanePositionSequence)
	orient := firstItem(els, tagPlaneOrientationSequence)
	if pos != nil && orient != nil {
		origin, err := parseDSs(stringValues(find(pos, tagImagePositionPatient)))
		if err != nil {
			return Item{}, err
		}
		cosines, err := parseDSs(stringValues(find(orient, tagImageOrientationPatient)))
		if err != nil {
			return Item{}, err
		}
		if len(origin) == 3 && len(cosines) == 6 {
			item.PlanePoints = append(origin, cosines...)
		}
	}
	return item, nil
}

func readMeta(els []*dicom.Element) map[string]string {
	var meta map[string]string
	for _, item := range sequence(find(els, tagContentSequence)) {
		key := firstString(firstItem(item, tagConceptNameCodeSequence), tagCodeMeaning)
		if key == "" {
			continue
		}
		if meta == nil {
			meta = map[string]string{}
		}
		meta[key] = firstString(item, tagTextValue)
	}
	return meta
}

func find(els []*dicom.Element, t tag.Tag) *dicom.Element {
	for _, e := range els {
		if e.Tag == t {
			return e
		}
	}
	return nil
}

func stringValues(e *dicom.Element) []string {
	if e == nil {
		return nil
	}
	v, _ := e.Value.GetValue().([]string)
	return v
}

func ints(e *dicom.Element) []int {
	if e == nil {
		return nil
	}
	v, _ := e.Value.GetValue().([]int)
	return v
}

func floats(e *dicom.Element) []float64 {
	if e == nil {
		return nil
	}
	v, _ := e.Value.GetValue().([]float64)
	return slices.Clone(v)
}

func sequence(e *dicom.Element) [][]*dicom.Element {
	if e == nil {
		return nil
	}
	items, _ := e.Value.GetValue().([]*dicom.SequenceItemValue)
	res := make([][]*dicom.Element, 0, len(items))
	for _, item := range items {
		if els, ok := item.GetValue().([]*dicom.Element); ok {
			res = append(res, els)
		}
	}
	return res
}

func firstItem(els []*dicom.Element, t tag.Tag) []*dicom.Element {
	if items := sequence(find(els, t)); len(items) != 0 {
		return items[0]
	}
	return nil
}

func firstString(els []*dicom.Element, t tag.Tag) string {
	if v := stringValues(find(els, t)); len(v) != 0 {
		return v[0]
	}
	return ""
}

func formatDS(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func formatDSs(values []float64) []string {
	res := make([]string, len(values))
	for i, v := range values {
		res[i] = formatDS(v)
	}
	return res
}

func parseDS(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errs.Wrap(errs.ErrParsingFailed, "report", "FromDataset", "read decimal "+s)
	}
	return v, nil
}

func parseDSs(values []string) ([]float64, error) {
	if len(values) == 0 {
		return nil, nil
	}
	res := make([]float64, len(values))
	for i, s := range values {
		v, err := parseDS(s)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

// encodeColour returns the DICOM CIELab encoding of a hex colour: L* in
// [0, 100] and a*, b* in [-128, 127] scaled to [0, 65535].
func encodeColour(hex string) ([]int, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, errs.Wrap(errs.ErrInvalidInput, "report", "ToDataset", "parse colour "+hex)
	}
	l, a, b := c.Lab()
	scale := func(v, lo, hi float64) int {
		v = math.Min(math.Max(v, lo), hi)
		return int(math.Round((v - lo) / (hi - lo) * 65535))
	}
	return []int{scale(l*100, 0, 100), scale(a*100, -128, 127), scale(b*100, -128, 127)}, nil
}

func decodeColour(lab []int) string {
	unscale := func(v int, lo, hi float64) float64 {
		return lo + float64(v)/65535*(hi-lo)
	}
	c := colorful.Lab(unscale(lab[0], 0, 100)/100, unscale(lab[1], -128, 127)/100, unscale(lab[2], -128, 127)/100)
	return c.Clamped().Hex()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
