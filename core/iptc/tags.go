package iptc

// Format is how a dataset payload is stored.
type Format int

const (
	FormatString Format = iota
	FormatDigits
	FormatUint16
	FormatBinary
)

// Dataset describes one IIM dataset.
type Dataset struct {
	Record     uint8
	Number     uint8
	Name       string
	Format     Format
	Repeatable bool
	// MaxLen is the longest payload the standard allows, 0 if unbounded.
	MaxLen int
}

// Records.
const (
	RecordEnvelope    = 1
	RecordApplication = 2
	RecordNewsPhoto   = 3
)

// DatasetCodedCharacterSet is envelope dataset 1:90. ESC % G declares
// UTF-8.
const DatasetCodedCharacterSet = 90

// UTF8Marker is the CodedCharacterSet value for UTF-8.
const UTF8Marker = "\x1b%G"

var datasets = []Dataset{
	{1, 0, "EnvelopeRecordVersion", FormatUint16, false, 0},
	{1, 5, "Destination", FormatString, true, 1024},
	{1, 20, "FileFormat", FormatUint16, false, 0},
	{1, 22, "FileVersion", FormatUint16, false, 0},
	{1, 30, "ServiceIdentifier", FormatString, false, 10},
	{1, 40, "EnvelopeNumber", FormatDigits, false, 8},
	{1, 50, "ProductID", FormatString, true, 32},
	{1, 60, "EnvelopePriority", FormatDigits, false, 1},
	{1, 70, "DateSent", FormatDigits, false, 8},
	{1, 80, "TimeSent", FormatString, false, 11},
	{1, 90, "CodedCharacterSet", FormatString, false, 32},
	{1, 100, "UniqueObjectName", FormatString, false, 80},
	{1, 120, "ARMIdentifier", FormatUint16, false, 0},
	{1, 122, "ARMVersion", FormatUint16, false, 0},

	{2, 0, "ApplicationRecordVersion", FormatUint16, false, 0},
	{2, 3, "ObjectTypeReference", FormatString, false, 67},
	{2, 4, "ObjectAttributeReference", FormatString, true, 68},
	{2, 5, "ObjectName", FormatString, false, 64},
	{2, 7, "EditStatus", FormatString, false, 64},
	{2, 8, "EditorialUpdate", FormatDigits, false, 2},
	{2, 10, "Urgency", FormatDigits, false, 1},
	{2, 12, "SubjectReference", FormatString, true, 236},
	{2, 15, "Category", FormatString, false, 3},
	{2, 20, "SupplementalCategories", FormatString, true, 32},
	{2, 22, "FixtureIdentifier", FormatString, false, 32},
	{2, 25, "Keywords", FormatString, true, 64},
	{2, 26, "ContentLocationCode", FormatString, true, 3},
	{2, 27, "ContentLocationName", FormatString, true, 64},
	{2, 30, "ReleaseDate", FormatDigits, false, 8},
	{2, 35, "ReleaseTime", FormatString, false, 11},
	{2, 37, "ExpirationDate", FormatDigits, false, 8},
	{2, 38, "ExpirationTime", FormatString, false, 11},
	{2, 40, "SpecialInstructions", FormatString, false, 256},
	{2, 42, "ActionAdvised", FormatDigits, false, 2},
	{2, 45, "ReferenceService", FormatString, true, 10},
	{2, 47, "ReferenceDate", FormatDigits, true, 8},
	{2, 50, "ReferenceNumber", FormatDigits, true, 8},
	{2, 55, "DateCreated", FormatDigits, false, 8},
	{2, 60, "TimeCreated", FormatString, false, 11},
	{2, 62, "DigitalCreationDate", FormatDigits, false, 8},
	{2, 63, "DigitalCreationTime", FormatString, false, 11},
	{2, 65, "OriginatingProgram", FormatString, false, 32},
	{2, 70, "ProgramVersion", FormatString, false, 10},
	{2, 75, "ObjectCycle", FormatString, false, 1},
	{2, 80, "By-line", FormatString, true, 32},
	{2, 85, "By-lineTitle", FormatString, true, 32},
	{2, 90, "City", FormatString, false, 32},
	{2, 92, "Sub-location", FormatString, false, 32},
	{2, 95, "Province-State", FormatString, false, 32},
	{2, 100, "Country-PrimaryLocationCode", FormatString, false, 3},
	{2, 101, "Country-PrimaryLocationName", FormatString, false, 64},
	{2, 103, "OriginalTransmissionReference", FormatString, false, 32},
	{2, 105, "Headline", FormatString, false, 256},
	{2, 110, "Credit", FormatString, false, 32},
	{2, 115, "Source", FormatString, false, 32},
	{2, 116, "CopyrightNotice", FormatString, false, 128},
	{2, 118, "Contact", FormatString, true, 128},
	{2, 120, "Caption-Abstract", FormatString, false, 2000},
	{2, 121, "LocalCaption", FormatString, false, 256},
	{2, 122, "Writer-Editor", FormatString, true, 32},
	{2, 125, "RasterizedCaption", FormatBinary, false, 7360},
	{2, 130, "ImageType", FormatString, false, 2},
	{2, 131, "ImageOrientation", FormatString, false, 1},
	{2, 135, "LanguageIdentifier", FormatString, false, 3},
	{2, 150, "AudioType", FormatString, false, 2},
	{2, 151, "AudioSamplingRate", FormatDigits, false, 6},
	{2, 152, "AudioSamplingResolution", FormatDigits, false, 2},
	{2, 153, "AudioDuration", FormatDigits, false, 6},
	{2, 154, "AudioOutcue", FormatString, false, 64},
	{2, 184, "JobID", FormatString, false, 64},
	{2, 185, "MasterDocumentID", FormatString, false, 256},
	{2, 186, "ShortDocumentID", FormatString, false, 64},
	{2, 187, "UniqueDocumentID", FormatString, false, 128},
	{2, 188, "OwnerID", FormatString, false, 128},
	{2, 200, "ObjectPreviewFileFormat", FormatUint16, false, 0},
	{2, 201, "ObjectPreviewFileVersion", FormatUint16, false, 0},
	{2, 202, "ObjectPreviewData", FormatBinary, false, 0},
	{2, 221, "Prefs", FormatString, false, 64},
	{2, 225, "ClassifyState", FormatString, false, 64},
	{2, 228, "SimilarityIndex", FormatString, false, 32},
	{2, 230, "DocumentNotes", FormatString, false, 1024},
	{2, 231, "DocumentHistory", FormatString, false, 256},
	{2, 232, "ExifCameraInfo", FormatString, false, 4096},
	{2, 255, "CatalogSets", FormatString, true, 256},

	{3, 0, "NewsPhotoVersion", FormatUint16, false, 0},
	{3, 10, "IPTCPictureNumber", FormatString, false, 16},
	{3, 20, "IPTCImageWidth", FormatUint16, false, 0},
	{3, 30, "IPTCImageHeight", FormatUint16, false, 0},
	{3, 40, "IPTCPixelWidth", FormatUint16, false, 0},
	{3, 50, "IPTCPixelHeight", FormatUint16, false, 0},
	{3, 55, "SupplementalType", FormatUint16, false, 0},
	{3, 60, "ColorRepresentation", FormatUint16, false, 0},
	{3, 64, "InterchangeColorSpace", FormatUint16, false, 0},
	{3, 65, "ColorSequence", FormatUint16, false, 0},
	{3, 66, "ICC_Profile", FormatBinary, false, 0},
	{3, 70, "ColorCalibrationMatrix", FormatBinary, false, 0},
	{3, 80, "LookupTable", FormatBinary, false, 0},
	{3, 84, "NumIndexEntries", FormatUint16, false, 0},
	{3, 85, "ColorPalette", FormatBinary, false, 0},
	{3, 86, "IPTCBitsPerSample", FormatUint16, false, 0},
	{3, 90, "SampleStructure", FormatUint16, false, 0},
	{3, 100, "ScanningDirection", FormatUint16, false, 0},
	{3, 102, "IPTCImageRotation", FormatUint16, false, 0},
	{3, 110, "DataCompressionMethod", FormatUint16, false, 0},
	{3, 120, "QuantizationMethod", FormatUint16, false, 0},
	{3, 125, "EndPoints", FormatBinary, false, 0},
	{3, 130, "ExcursionTolerance", FormatUint16, false, 0},
	{3, 135, "BitsPerComponent", FormatUint16, false, 0},
	{3, 140, "MaximumDensityRange", FormatUint16, false, 0},
	{3, 145, "GammaCompensatedValue", FormatUint16, false, 0},
}

// aliases are accepted on write only.
var aliases = map[string]string{
	"Title":        "ObjectName",
	"Instructions": "SpecialInstructions",
	"Byline":       "By-line",
	"BylineTitle":  "By-lineTitle",
	"Caption":      "Caption-Abstract",
	"Copyright":    "CopyrightNotice",
	"Sublocation":  "Sub-location",
	"Country":      "Country-PrimaryLocationName",
	"CountryCode":  "Country-PrimaryLocationCode",
}

var (
	byNumber = map[[2]uint8]*Dataset{}
	byName   = map[string]*Dataset{}
)

func init() {
	for i := range datasets {
		d := &datasets[i]
		byNumber[[2]uint8{d.Record, d.Number}] = d
		byName[d.Name] = d
	}
}

// Lookup returns the dataset definition for record:number.
func Lookup(record, number uint8) (*Dataset, bool) {
	d, ok := byNumber[[2]uint8{record, number}]
	return d, ok
}

// Find returns the dataset definition for a name or alias.
func Find(name string) (*Dataset, bool) {
	if real, ok := aliases[name]; ok {
		name = real
	}
	d, ok := byName[name]
	return d, ok
}
