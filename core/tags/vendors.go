package tags

var sonyMain = Table{
	0x0010: {Name: "CameraInfo"},
	0x0020: {Name: "FocusInfo"},
	0x0102: {Name: "Quality", Values: Values{
		0: "RAW", 1: "Super Fine", 2: "Fine", 3: "Standard", 4: "Economy", 5: "Extra Fine",
		6: "RAW + JPEG/HEIF", 7: "Compressed RAW", 8: "Compressed RAW + JPEG",
	}},
	0x0104: {Name: "FlashExposureComp"},
	0x0105: {Name: "Teleconverter"},
	0x0112: {Name: "WhiteBalanceFineTune"},
	0x0114: {Name: "CameraSettings"},
	0x0115: {Name: "WhiteBalance"},
	0x0116: {Name: "ExtraInfo"},
	0x0E00: {Name: "PrintIM"},
	0x1000: {Name: "MultiBurstMode", Values: Values{0: "Off", 1: "On"}},
	0x1001: {Name: "MultiBurstImageWidth"},
	0x1002: {Name: "MultiBurstImageHeight"},
	0x1003: {Name: "Panorama"},
	0x2001: {Name: "PreviewImage"},
	0x2002: {Name: "Rating"},
	0x2004: {Name: "Contrast"},
	0x2005: {Name: "Saturation"},
	0x2006: {Name: "Sharpness"},
	0x2007: {Name: "Brightness"},
	0x2008: {Name: "LongExposureNoiseReduction", Values: Values{0: "Off", 1: "On (unused)", 0x10001: "On (dark subtracted)"}},
	0x2009: {Name: "HighISONoiseReduction", Values: Values{0: "Off", 1: "Low", 2: "Normal", 3: "High"}},
	0x200A: {Name: "HDR"},
	0x200B: {Name: "MultiFrameNoiseReduction", Values: Values{0: "Off", 1: "On", 255: "n/a"}},
	0x200E: {Name: "PictureEffect"},
	0x200F: {Name: "SoftSkinEffect"},
	0x2011: {Name: "VignettingCorrection", Values: Values{0: "Off", 2: "Auto", 0xffffffff: "n/a"}},
	0x2012: {Name: "LateralChromaticAberration", Values: Values{0: "Off", 2: "Auto", 0xffffffff: "n/a"}},
	0x2013: {Name: "DistortionCorrectionSetting", Values: Values{0: "Off", 2: "Auto", 0xffffffff: "n/a"}},
	0x2014: {Name: "WBShiftAB_GM"},
	0x2016: {Name: "AutoPortraitFramed", Values: Values{0: "No", 1: "Yes"}},
	0x201A: {Name: "ElectronicFrontCurtainShutter", Values: Values{0: "Off", 1: "On"}},
	0x201B: {Name: "FocusMode"},
	0x201C: {Name: "AFAreaModeSetting"},
	0x201E: {Name: "AFPointSelected"},
	0x2020: {Name: "AFPointsUsed"},
	0x2021: {Name: "AFTracking", Values: Values{0: "Off", 1: "Face tracking", 2: "Lock On AF"}},
	0x2022: {Name: "FocalPlaneAFPointsUsed"},
	0x2023: {Name: "MultiFrameNREffect", Values: Values{0: "Normal", 1: "High"}},
	0x2026: {Name: "WBShiftAB_GM_Precise"},
	0x2027: {Name: "FocusLocation"},
	0x2028: {Name: "VariableLowPassFilter"},
	0x2029: {Name: "RAWFileType", Values: Values{0: "Compressed RAW", 1: "Uncompressed RAW", 2: "Lossless Compressed RAW", 3: "Compressed RAW (HQ)"}},
	0x202A: {Name: "Tag202a"},
	0x202B: {Name: "PrioritySetInAWB", Values: Values{0: "Standard", 1: "Ambience", 2: "White"}},
	0x202C: {Name: "MeteringMode2"},
	0x202D: {Name: "ExposureStandardAdjustment"},
	0x202E: {Name: "Quality2"},
	0x2031: {Name: "SerialNumber"},
	0x2032: {Name: "Shadows"},
	0x2033: {Name: "Highlights"},
	0x2034: {Name: "Fade"},
	0x2035: {Name: "SharpnessRange"},
	0x2036: {Name: "Clarity"},
	0x2037: {Name: "FocusFrameSize"},
	0x2039: {Name: "JPEG-HEIFSwitch", Values: Values{0: "JPEG", 1: "HEIF", 0xffff: "n/a"}},
	0xB000: {Name: "FileFormat"},
	0xB001: {Name: "SonyModelID"},
	0xB020: {Name: "CreativeStyle"},
	0xB021: {Name: "ColorTemperature"},
	0xB022: {Name: "ColorCompensationFilter"},
	0xB023: {Name: "SceneMode"},
	0xB024: {Name: "ZoneMatching"},
	0xB025: {Name: "DynamicRangeOptimizer"},
	0xB026: {Name: "ImageStabilization", Values: Values{0: "Off", 1: "On", 0xffffffff: "n/a"}},
	0xB027: {Name: "LensType"},
	0xB028: {Name: "MinoltaMakerNote"},
	0xB029: {Name: "ColorMode"},
	0xB02A: {Name: "LensSpec"},
	0xB02B: {Name: "FullImageSize"},
	0xB02C: {Name: "PreviewImageSize"},
	0xB040: {Name: "Macro"},
	0xB041: {Name: "ExposureMode"},
	0xB042: {Name: "FocusMode2"},
	0xB043: {Name: "AFAreaMode"},
	0xB044: {Name: "AFIlluminator", Values: Values{0: "Off", 1: "Auto", 0xffff: "n/a"}},
	0xB047: {Name: "JPEGQuality", Values: Values{0: "Standard", 1: "Fine", 2: "Extra Fine", 0xffff: "n/a"}},
	0xB048: {Name: "FlashLevel"},
	0xB049: {Name: "ReleaseMode"},
	0xB04A: {Name: "SequenceNumber"},
	0xB04B: {Name: "Anti-Blur"},
	0xB04E: {Name: "FocusMode3"},
	0xB04F: {Name: "DynamicRangeOptimizer2"},
	0xB050: {Name: "HighISONoiseReduction2"},
	0xB052: {Name: "IntelligentAuto"},
	0xB054: {Name: "WhiteBalance2"},
}

var olympusMain = Table{
	0x0000: {Name: "MakerNoteVersion"},
	0x0040: {Name: "CompressedImageSize"},
	0x0081: {Name: "PreviewImageData"},
	0x0088: {Name: "PreviewImageStart", Structural: true},
	0x0089: {Name: "PreviewImageLength", Structural: true},
	0x0100: {Name: "ThumbnailImage"},
	0x0104: {Name: "BodyFirmwareVersion"},
	0x0200: {Name: "SpecialMode"},
	0x0201: {Name: "Quality", Values: Values{1: "SQ", 2: "HQ", 3: "SHQ", 4: "RAW", 5: "SQ (5)"}},
	0x0202: {Name: "Macro", Values: Values{0: "Off", 1: "On", 2: "Super Macro"}},
	0x0203: {Name: "BWMode", Values: Values{0: "No", 1: "Yes", 6: "(none)"}},
	0x0204: {Name: "DigitalZoom"},
	0x0205: {Name: "FocalPlaneDiagonal"},
	0x0206: {Name: "LensDistortionParams"},
	0x0207: {Name: "CameraType"},
	0x0208: {Name: "TextInfo"},
	0x0209: {Name: "CameraID"},
	0x020B: {Name: "EpsonImageWidth"},
	0x020C: {Name: "EpsonImageHeight"},
	0x020D: {Name: "EpsonSoftware"},
	0x0280: {Name: "PreviewImage"},
	0x0300: {Name: "PreCaptureFrames"},
	0x0301: {Name: "WhiteBoard"},
	0x0302: {Name: "OneTouchWB", Values: Values{0: "Off", 1: "On", 2: "On (Preset)"}},
	0x0303: {Name: "WhiteBalanceBracket"},
	0x0304: {Name: "WhiteBalanceBias"},
	0x0403: {Name: "SceneMode"},
	0x0404: {Name: "SerialNumber"},
	0x0405: {Name: "Firmware"},
	0x0E00: {Name: "PrintIM"},
	0x1000: {Name: "ShutterSpeedValue"},
	0x1001: {Name: "ISOValue"},
	0x1002: {Name: "ApertureValue"},
	0x1003: {Name: "BrightnessValue"},
	0x1004: {Name: "FlashMode"},
	0x1005: {Name: "FlashDevice"},
	0x1006: {Name: "ExposureCompensation"},
	0x1007: {Name: "SensorTemperature"},
	0x1008: {Name: "LensTemperature"},
	0x100A: {Name: "FocusRange", Values: Values{0: "Normal", 1: "Macro"}},
	0x100B: {Name: "FocusMode", Values: Values{0: "Auto", 1: "Manual"}},
	0x100C: {Name: "ManualFocusDistance"},
	0x100F: {Name: "Sharpness", Values: Values{0: "Normal", 1: "Hard", 2: "Soft"}},
	0x1015: {Name: "WBMode"},
	0x1017: {Name: "RedBalance"},
	0x1018: {Name: "BlueBalance"},
	0x101A: {Name: "SerialNumber2"},
	0x1029: {Name: "Contrast", Values: Values{0: "High", 1: "Normal", 2: "Low"}},
	0x102E: {Name: "OlympusImageWidth"},
	0x102F: {Name: "OlympusImageHeight"},
	0x1034: {Name: "CompressionRatio"},
	0x2010: {Name: "Equipment"},
	0x2020: {Name: "CameraSettings"},
	0x2030: {Name: "RawDevelopment"},
	0x2031: {Name: "RawDev2"},
	0x2040: {Name: "ImageProcessing"},
	0x2050: {Name: "FocusInfo"},
	0x3000: {Name: "RawInfo"},
}

// olympusEquipment is the 0x2010 sub-IFD.
var olympusEquipment = Table{
	0x0000: {Name: "EquipmentVersion"},
	0x0100: {Name: "CameraType2"},
	0x0101: {Name: "SerialNumber"},
	0x0102: {Name: "InternalSerialNumber"},
	0x0103: {Name: "FocalPlaneDiagonal"},
	0x0104: {Name: "BodyFirmwareVersion"},
	0x0201: {Name: "LensType"},
	0x0202: {Name: "LensSerialNumber"},
	0x0203: {Name: "LensModel"},
	0x0204: {Name: "LensFirmwareVersion"},
	0x0205: {Name: "MaxApertureAtMinFocal"},
	0x0206: {Name: "MaxApertureAtMaxFocal"},
	0x0207: {Name: "MinFocalLength"},
	0x0208: {Name: "MaxFocalLength"},
	0x020A: {Name: "MaxAperture"},
	0x020B: {Name: "LensProperties"},
	0x0301: {Name: "Extender"},
	0x0302: {Name: "ExtenderSerialNumber"},
	0x0303: {Name: "ExtenderModel"},
	0x1000: {Name: "FlashType"},
	0x1001: {Name: "FlashModel"},
	0x1002: {Name: "FlashFirmwareVersion"},
	0x1003: {Name: "FlashSerialNumber"},
}

// olympusCameraSettings is the 0x2020 sub-IFD.
var olympusCameraSettings = Table{
	0x0000: {Name: "CameraSettingsVersion"},
	0x0100: {Name: "PreviewImageValid", Values: Values{0: "No", 1: "Yes"}},
	0x0101: {Name: "PreviewImageStart", Structural: true},
	0x0102: {Name: "PreviewImageLength", Structural: true},
	0x0200: {Name: "ExposureMode", Values: Values{1: "Manual", 2: "Program", 3: "Aperture-priority AE", 4: "Shutter speed priority AE", 5: "Program-shift"}},
	0x0201: {Name: "AELock", Values: Values{0: "Off", 1: "On"}},
	0x0202: {Name: "MeteringMode", Values: Values{2: "Center-weighted average", 3: "Spot", 5: "ESP", 261: "Pattern+AF", 515: "Spot+Highlight control", 1027: "Spot+Shadow control"}},
	0x0203: {Name: "ExposureShift"},
	0x0300: {Name: "MacroMode", Values: Values{0: "Off", 1: "On", 2: "Super Macro"}},
	0x0301: {Name: "FocusMode"},
	0x0302: {Name: "FocusProcess"},
	0x0303: {Name: "AFSearch", Values: Values{0: "Not Ready", 1: "Ready"}},
	0x0304: {Name: "AFAreas"},
	0x0400: {Name: "FlashMode"},
	0x0401: {Name: "FlashExposureComp"},
	0x0500: {Name: "WhiteBalance2"},
	0x0501: {Name: "WhiteBalanceTemperature"},
	0x0505: {Name: "PictureMode"},
	0x0506: {Name: "PictureModeSaturation"},
	0x0509: {Name: "PictureModeContrast"},
	0x050A: {Name: "PictureModeSharpness"},
	0x0520: {Name: "PictureMode2"},
	0x0600: {Name: "DriveMode"},
	0x0603: {Name: "ImageQuality2", Values: Values{1: "SQ", 2: "HQ", 3: "SHQ", 4: "RAW", 5: "SQ (5)"}},
	0x0604: {Name: "ImageStabilization", Values: Values{0: "Off", 1: "On, Mode 1", 2: "On, Mode 2", 3: "On, Mode 3", 4: "On, Mode 4"}},
}

var panasonicMain = Table{
	0x0001: {Name: "ImageQuality", Values: Values{1: "TIFF", 2: "High", 3: "Normal", 6: "Very High", 7: "RAW", 9: "Motion Picture", 11: "Full HD Movie", 12: "4k Movie"}},
	0x0002: {Name: "FirmwareVersion"},
	0x0003: {Name: "WhiteBalance", Values: Values{
		1: "Auto", 2: "Daylight", 3: "Cloudy", 4: "Incandescent", 5: "Manual", 8: "Flash",
		10: "Black & White", 11: "Manual 2", 12: "Shade", 13: "Kelvin",
	}},
	0x0007: {Name: "FocusMode", Values: Values{1: "Auto", 2: "Manual", 4: "Auto, Focus button", 5: "Auto, Continuous", 6: "AF-S", 7: "AF-C", 8: "AF-F"}},
	0x000F: {Name: "AFAreaMode"},
	0x001A: {Name: "ImageStabilization", Values: Values{
		2: "On, Optical", 3: "Off", 4: "On, Mode 2", 5: "On, Optical Panning", 6: "On, Body-only",
		7: "On, Body-only Panning", 9: "Dual IS", 10: "Dual IS Panning", 11: "Dual2 IS", 12: "Dual2 IS Panning",
	}},
	0x001C: {Name: "MacroMode", Values: Values{1: "On", 2: "Off", 0x101: "Tele-Macro", 0x201: "Macro Zoom"}},
	0x001F: {Name: "ShootingMode"},
	0x0020: {Name: "Audio", Values: Values{1: "Yes", 2: "No", 3: "Stereo"}},
	0x0023: {Name: "WhiteBalanceBias"},
	0x0024: {Name: "FlashBias"},
	0x0025: {Name: "InternalSerialNumber"},
	0x0026: {Name: "PanasonicExifVersion"},
	0x0028: {Name: "ColorEffect", Values: Values{1: "Off", 2: "Warm", 3: "Cool", 4: "Black & White", 5: "Sepia", 6: "Happy", 8: "Vivid"}},
	0x0029: {Name: "TimeSincePowerOn"},
	0x002A: {Name: "BurstMode"},
	0x002B: {Name: "SequenceNumber"},
	0x002C: {Name: "ContrastMode"},
	0x002D: {Name: "NoiseReduction"},
	0x002E: {Name: "SelfTimer", Values: Values{0: "Off (0)", 1: "Off", 2: "10 s", 3: "2 s", 4: "10 s / 3 pictures"}},
	0x0030: {Name: "Rotation", Values: Values{1: "Horizontal (normal)", 3: "Rotate 180", 6: "Rotate 90 CW", 8: "Rotate 270 CW"}},
	0x0031: {Name: "AFAssistLamp", Values: Values{1: "Fired", 2: "Enabled but Not Used", 3: "Disabled but Required", 4: "Disabled and Not Required"}},
	0x0032: {Name: "ColorMode", Values: Values{0: "Normal", 1: "Natural", 2: "Vivid"}},
	0x0033: {Name: "BabyAge"},
	0x0034: {Name: "OpticalZoomMode", Values: Values{1: "Standard", 2: "Extended"}},
	0x0035: {Name: "ConversionLens", Values: Values{1: "Off", 2: "Wide", 3: "Telephoto", 4: "Macro"}},
	0x0036: {Name: "TravelDay"},
	0x0039: {Name: "Contrast"},
	0x003A: {Name: "WorldTimeLocation", Values: Values{1: "Home", 2: "Destination"}},
	0x003B: {Name: "TextStamp", Values: Values{1: "Off", 2: "On"}},
	0x003C: {Name: "ProgramISO"},
	0x003D: {Name: "AdvancedSceneType"},
	0x003F: {Name: "FacesDetected"},
	0x0040: {Name: "Saturation"},
	0x0041: {Name: "Sharpness"},
	0x0042: {Name: "FilmMode"},
	0x0044: {Name: "ColorTempKelvin"},
	0x0045: {Name: "BracketSettings"},
	0x0046: {Name: "WBShiftAB"},
	0x0047: {Name: "WBShiftGM"},
	0x0048: {Name: "FlashCurtain", Values: Values{0: "n/a", 1: "1st", 2: "2nd"}},
	0x0049: {Name: "LongExposureNoiseReduction", Values: Values{1: "Off", 2: "On"}},
	0x004B: {Name: "PanasonicImageWidth"},
	0x004C: {Name: "PanasonicImageHeight"},
	0x004D: {Name: "AFPointPosition"},
	0x0051: {Name: "LensType"},
	0x0052: {Name: "LensSerialNumber"},
	0x0053: {Name: "AccessoryType"},
	0x0054: {Name: "AccessorySerialNumber"},
	0x0059: {Name: "Transform"},
	0x005D: {Name: "IntelligentExposure", Values: Values{0: "Off", 1: "Low", 2: "Standard", 3: "High"}},
	0x0060: {Name: "LensFirmwareVersion"},
	0x0065: {Name: "Title"},
	0x0066: {Name: "BabyName"},
	0x0067: {Name: "Location"},
	0x0069: {Name: "Country"},
	0x006B: {Name: "State"},
	0x006D: {Name: "City"},
	0x006F: {Name: "Landmark"},
	0x0070: {Name: "IntelligentResolution", Values: Values{0: "Off", 2: "Auto", 3: "On"}},
	0x0077: {Name: "BurstSpeed"},
	0x0079: {Name: "IntelligentD-Range", Values: Values{0: "Off", 1: "Low", 2: "Standard", 3: "High"}},
	0x0089: {Name: "PhotoStyle"},
	0x008A: {Name: "ShadingCompensation", Values: Values{0: "Off", 1: "On"}},
	0x008F: {Name: "CameraOrientation", Values: Values{0: "Normal", 1: "Rotate CW", 2: "Rotate 180", 3: "Rotate CCW", 4: "Tilt Upwards", 5: "Tilt Downwards"}},
	0x0090: {Name: "RollAngle"},
	0x0091: {Name: "PitchAngle"},
	0x009F: {Name: "ShutterType", Values: Values{0: "Mechanical", 1: "Electronic", 2: "Hybrid"}},
	0x00D1: {Name: "ISO"},
	0x0E00: {Name: "PrintIM"},
	0x2003: {Name: "TimeInfo"},
	0x8000: {Name: "MakerNoteVersion"},
	0x8001: {Name: "SceneMode"},
	0x8004: {Name: "WBRedLevel"},
	0x8005: {Name: "WBGreenLevel"},
	0x8006: {Name: "WBBlueLevel"},
	0x8007: {Name: "FlashFired", Values: Values{1: "No", 2: "Yes"}},
	0x8008: {Name: "TextStamp2", Values: Values{1: "Off", 2: "On"}},
	0x8009: {Name: "TextStamp3", Values: Values{1: "Off", 2: "On"}},
	0x8010: {Name: "BabyAge2"},
	0x8012: {Name: "Transform2"},
}

var fujifilmMain = Table{
	0x0000: {Name: "Version"},
	0x0010: {Name: "InternalSerialNumber"},
	0x1000: {Name: "Quality"},
	0x1001: {Name: "Sharpness", Values: Values{
		0x00: "-4 (softest)", 0x01: "-3 (very soft)", 0x02: "-2 (soft)", 0x03: "0 (normal)",
		0x04: "+2 (hard)", 0x05: "+3 (very hard)", 0x06: "+4 (hardest)", 0x82: "-1 (medium soft)",
		0x84: "+1 (medium hard)", 0x8000: "Film Simulation", 0xffff: "n/a",
	}},
	0x1002: {Name: "WhiteBalance", Values: Values{
		0x0: "Auto", 0x1: "Auto (white priority)", 0x2: "Auto (ambiance priority)", 0x100: "Daylight",
		0x200: "Cloudy", 0x300: "Daylight Fluorescent", 0x301: "Day White Fluorescent",
		0x302: "White Fluorescent", 0x303: "Warm White Fluorescent", 0x304: "Living Room Warm White Fluorescent",
		0x400: "Incandescent", 0x500: "Flash", 0x600: "Underwater", 0xf00: "Custom",
		0xff0: "Kelvin",
	}},
	0x1003: {Name: "Saturation"},
	0x1004: {Name: "Contrast"},
	0x1005: {Name: "ColorTemperature"},
	0x100A: {Name: "WhiteBalanceFineTune"},
	0x100B: {Name: "NoiseReduction"},
	0x100E: {Name: "HighISONoiseReduction"},
	0x100F: {Name: "Clarity"},
	0x1010: {Name: "FujiFlashMode", Values: Values{
		0x0: "Auto", 0x1: "On", 0x2: "Off", 0x3: "Red-eye reduction", 0x4: "External",
		0x10: "Commander", 0x8000: "Not Attached", 0x8120: "TTL", 0x9840: "Manual",
	}},
	0x1011: {Name: "FlashExposureComp"},
	0x1020: {Name: "Macro", Values: Values{0: "Off", 1: "On"}},
	0x1021: {Name: "FocusMode", Values: Values{0: "Auto", 1: "Manual", 65535: "Movie"}},
	0x1022: {Name: "AFMode"},
	0x1023: {Name: "FocusPixel"},
	0x102B: {Name: "PrioritySettings"},
	0x102D: {Name: "FocusSettings"},
	0x102E: {Name: "AFCSettings"},
	0x1030: {Name: "SlowSync", Values: Values{0: "Off", 1: "On"}},
	0x1031: {Name: "PictureMode"},
	0x1032: {Name: "ExposureCount"},
	0x1033: {Name: "EXRAuto", Values: Values{0: "Auto", 1: "Manual"}},
	0x1034: {Name: "EXRMode"},
	0x1040: {Name: "ShadowTone"},
	0x1041: {Name: "HighlightTone"},
	0x1044: {Name: "DigitalZoom"},
	0x1045: {Name: "LensModulationOptimizer", Values: Values{0: "Off", 1: "On"}},
	0x1047: {Name: "GrainEffectRoughness"},
	0x1048: {Name: "ColorChromeEffect"},
	0x1049: {Name: "BWAdjustment"},
	0x104B: {Name: "BWMagentaGreen"},
	0x104C: {Name: "GrainEffectSize"},
	0x104D: {Name: "CropMode"},
	0x104E: {Name: "ColorChromeFXBlue"},
	0x1050: {Name: "ShutterType", Values: Values{0: "Mechanical", 1: "Electronic", 2: "Electronic (long shutter speed)", 3: "Electronic Front Curtain"}},
	0x1100: {Name: "AutoBracketing"},
	0x1101: {Name: "SequenceNumber"},
	0x1103: {Name: "DriveSettings"},
	0x1153: {Name: "PanoramaAngle"},
	0x1154: {Name: "PanoramaDirection"},
	0x1201: {Name: "AdvancedFilter"},
	0x1210: {Name: "ColorMode"},
	0x1300: {Name: "BlurWarning", Values: Values{0: "None", 1: "Blur Warning"}},
	0x1301: {Name: "FocusWarning", Values: Values{0: "Good", 1: "Out of focus"}},
	0x1302: {Name: "ExposureWarning", Values: Values{0: "Good", 1: "Bad exposure"}},
	0x1400: {Name: "DynamicRange", Values: Values{1: "Standard", 3: "Wide"}},
	0x1401: {Name: "FilmMode", Values: Values{
		0x0: "F0/Standard (Provia)", 0x100: "F1/Studio Portrait", 0x200: "F2/Fujichrome (Velvia)",
		0x300: "F3/Studio Portrait Ex", 0x400: "F4/Velvia", 0x500: "Pro Neg. Std", 0x501: "Pro Neg. Hi",
		0x600: "Classic Chrome", 0x700: "Eterna", 0x800: "Classic Negative", 0x900: "Bleach Bypass",
		0xa00: "Nostalgic Negative", 0xb00: "Reala ACE",
	}},
	0x1402: {Name: "DynamicRangeSetting"},
	0x1403: {Name: "DevelopmentDynamicRange"},
	0x1404: {Name: "MinFocalLength"},
	0x1405: {Name: "MaxFocalLength"},
	0x1406: {Name: "MaxApertureAtMinFocal"},
	0x1407: {Name: "MaxApertureAtMaxFocal"},
	0x140B: {Name: "AutoDynamicRange"},
	0x1422: {Name: "ImageStabilization"},
	0x1425: {Name: "SceneRecognition"},
	0x1431: {Name: "Rating"},
	0x1436: {Name: "ImageGeneration", Values: Values{0: "Original Image", 1: "Re-developed from RAW"}},
	0x1438: {Name: "ImageCount"},
	0x1447: {Name: "FujiModel"},
	0x1448: {Name: "FujiModel2"},
	0x144D: {Name: "RollAngle"},
	0x3803: {Name: "VideoRecordingMode"},
	0x3820: {Name: "FrameRate"},
	0x3821: {Name: "FrameWidth"},
	0x3822: {Name: "FrameHeight"},
	0x4100: {Name: "FacesDetected"},
	0x4103: {Name: "FacePositions"},
	0x8000: {Name: "FileSource"},
	0x8002: {Name: "OrderNumber"},
	0x8003: {Name: "FrameNumber"},
	0xB211: {Name: "Parallax"},
}

var pentaxMain = Table{
	0x0000: {Name: "PentaxVersion"},
	0x0001: {Name: "PentaxModelType"},
	0x0002: {Name: "PreviewImageSize"},
	0x0003: {Name: "PreviewImageLength", Structural: true},
	0x0004: {Name: "PreviewImageStart", Structural: true},
	0x0005: {Name: "PentaxModelID"},
	0x0006: {Name: "Date"},
	0x0007: {Name: "Time"},
	0x0008: {Name: "Quality", Values: Values{
		0: "Good", 1: "Better", 2: "Best", 3: "TIFF", 4: "RAW", 5: "Premium", 7: "RAW (pixel shift enabled)",
		8: "Dynamic Pixel Shift", 65535: "n/a",
	}},
	0x0009: {Name: "PentaxImageSize"},
	0x000B: {Name: "PictureMode"},
	0x000C: {Name: "FlashMode"},
	0x000D: {Name: "FocusMode", Values: Values{
		0: "Normal", 1: "Macro", 2: "Infinity", 3: "Manual", 4: "Super Macro", 5: "Pan Focus",
		16: "AF-S (Focus-priority)", 17: "AF-C (Focus-priority)", 18: "AF-A (Focus-priority)",
		32: "Contrast-detect (Focus-priority)", 33: "Tracking Contrast-detect (Focus-priority)",
		272: "AF-S (Release-priority)", 273: "AF-C (Release-priority)",
	}},
	0x000E: {Name: "AFPointSelected"},
	0x000F: {Name: "AFPointsInFocus"},
	0x0010: {Name: "FocusPosition"},
	0x0012: {Name: "ExposureTime"},
	0x0013: {Name: "FNumber"},
	0x0014: {Name: "ISO"},
	0x0015: {Name: "LightReading"},
	0x0016: {Name: "ExposureCompensation"},
	0x0017: {Name: "MeteringMode", Values: Values{0: "Multi-segment", 1: "Center-weighted average", 2: "Spot", 6: "Highlight"}},
	0x0018: {Name: "AutoBracketing"},
	0x0019: {Name: "WhiteBalance", Values: Values{
		0: "Auto", 1: "Daylight", 2: "Shade", 3: "Fluorescent", 4: "Tungsten", 5: "Manual",
		6: "Daylight Fluorescent", 7: "Day White Fluorescent", 8: "White Fluorescent", 9: "Flash",
		10: "Cloudy", 11: "Warm White Fluorescent", 14: "Multi Auto", 15: "Color Temperature Enhancement",
		17: "Kelvin", 65534: "Unknown", 65535: "User-Selected",
	}},
	0x001A: {Name: "WhiteBalanceMode"},
	0x001B: {Name: "BlueBalance"},
	0x001C: {Name: "RedBalance"},
	0x001D: {Name: "FocalLength"},
	0x001E: {Name: "DigitalZoom"},
	0x001F: {Name: "Saturation"},
	0x0020: {Name: "Contrast"},
	0x0021: {Name: "Sharpness"},
	0x0022: {Name: "WorldTimeLocation", Values: Values{0: "Hometown", 1: "Destination"}},
	0x0023: {Name: "HometownCity"},
	0x0024: {Name: "DestinationCity"},
	0x0025: {Name: "HometownDST", Values: Values{0: "No", 1: "Yes"}},
	0x0026: {Name: "DestinationDST", Values: Values{0: "No", 1: "Yes"}},
	0x0027: {Name: "DSPFirmwareVersion"},
	0x0028: {Name: "CPUFirmwareVersion"},
	0x0029: {Name: "FrameNumber"},
	0x002D: {Name: "EffectiveLV"},
	0x0032: {Name: "ImageEditing"},
	0x0033: {Name: "PictureMode2"},
	0x0034: {Name: "DriveMode"},
	0x0035: {Name: "SensorSize"},
	0x0037: {Name: "ColorSpace", Values: Values{0: "sRGB", 1: "Adobe RGB"}},
	0x003F: {Name: "LensRec"},
	0x0041: {Name: "DigitalFilter"},
	0x0047: {Name: "CameraTemperature"},
	0x0049: {Name: "NoiseReduction", Values: Values{0: "Off", 1: "On"}},
	0x004D: {Name: "FlashExposureComp"},
	0x004F: {Name: "ImageTone"},
	0x0050: {Name: "ColorTemperature"},
	0x005C: {Name: "ShakeReductionInfo"},
	0x005D: {Name: "ShutterCount"},
	0x0069: {Name: "DynamicRangeExpansion"},
	0x0071: {Name: "HighISONoiseReduction"},
	0x0072: {Name: "AFAdjustment"},
	0x0073: {Name: "MonochromeFilterEffect"},
	0x0074: {Name: "MonochromeToning"},
	0x0076: {Name: "FaceDetect"},
	0x0077: {Name: "FaceDetectFrameSize"},
	0x0079: {Name: "ShadowCorrection"},
	0x007A: {Name: "ISOAutoParameters"},
	0x007B: {Name: "CrossProcess"},
	0x007D: {Name: "LensCorr"},
	0x007E: {Name: "WhiteLevel"},
	0x007F: {Name: "BleachBypassToning"},
	0x0080: {Name: "AspectRatio"},
	0x0082: {Name: "BlurControl"},
	0x0085: {Name: "HDR"},
	0x0087: {Name: "ShutterType", Values: Values{0: "Normal", 1: "Electronic"}},
	0x0088: {Name: "NeutralDensityFilter", Values: Values{0: "Off", 1: "On"}},
	0x008B: {Name: "ISO2"},
	0x0200: {Name: "BlackPoint"},
	0x0201: {Name: "WhitePoint"},
	0x0205: {Name: "CameraSettings"},
	0x0206: {Name: "AEInfo"},
	0x0207: {Name: "LensInfo"},
	0x0208: {Name: "FlashInfo"},
	0x0209: {Name: "AEMeteringSegments"},
	0x020A: {Name: "FlashMeteringSegments"},
	0x020B: {Name: "SlaveFlashMeteringSegments"},
	0x020D: {Name: "WB_RGGBLevelsDaylight"},
	0x0215: {Name: "CameraInfo"},
	0x0216: {Name: "BatteryInfo"},
	0x021F: {Name: "AFInfo"},
	0x0222: {Name: "ColorInfo"},
	0x0229: {Name: "SerialNumber"},
	0x0E00: {Name: "PrintIM"},
}

var leicaMain = Table{
	0x0001: {Name: "CameraSerialNumber"},
	0x0003: {Name: "LensType"},
	0x0004: {Name: "LensSerialNumber"},
	0x0005: {Name: "InternalSerialNumber"},
	0x0007: {Name: "Lens"},
	0x0008: {Name: "FocusDistance"},
	0x0009: {Name: "FocusMode"},
	0x000A: {Name: "ApproximateFNumber"},
	0x000B: {Name: "ExposureMode"},
	0x000C: {Name: "ShotInfo"},
	0x000D: {Name: "WhiteBalance", Values: Values{0: "Auto", 1: "Daylight", 2: "Fluorescent", 3: "Tungsten", 4: "Flash", 10: "Cloudy", 11: "Shade"}},
	0x000F: {Name: "MeteringMode"},
	0x0010: {Name: "ISO"},
	0x0012: {Name: "ExternalSensorBrightnessValue"},
	0x0013: {Name: "MeasuredLV"},
	0x0014: {Name: "FilmSpeed"},
	0x0016: {Name: "CCD"},
	0x0018: {Name: "ModelType", Values: Values{0: "Digital"}},
	0x001D: {Name: "CameraTemperature"},
	0x001E: {Name: "ColorTemperature"},
	0x0024: {Name: "WB_RGBLevels"},
	0x0025: {Name: "UserProfile", Values: Values{1: "User Profile 1", 2: "User Profile 2", 3: "User Profile 3", 4: "User Profile 0 (Dynamic)"}},
	0x0026: {Name: "SerialNumber"},
	0x002E: {Name: "Brightness"},
	0x0300: {Name: "PreviewImage"},
	0x0301: {Name: "SerialNumber2"},
	0x0302: {Name: "CameraCode"},
	0x0303: {Name: "LensCode"},
	0x0304: {Name: "ExposureLock"},
	0x0305: {Name: "FocusLock"},
	0x0310: {Name: "SensorScale"},
	0x0311: {Name: "ExposureLock2"},
	0x0312: {Name: "FocusLock2"},
	0x0320: {Name: "FirmwareVersion"},
}

var samsungMain = Table{
	0x0001: {Name: "MakerNoteVersion"},
	0x0002: {Name: "DeviceType", Values: Values{0x1000: "Compact Digital Camera", 0x2000: "High-end NX Camera", 0x3000: "HXM Video Camera", 0x12000: "Cell Phone", 0x300000: "SMX Video Camera"}},
	0x0003: {Name: "SamsungModelID"},
	0x0011: {Name: "OrientationInfo"},
	0x0020: {Name: "SmartAlbumColor"},
	0x0021: {Name: "PictureWizard"},
	0x0030: {Name: "LocalLocationName"},
	0x0031: {Name: "LocationName"},
	0x0035: {Name: "Preview"},
	0x0040: {Name: "RawDataByteOrder"},
	0x0041: {Name: "WhiteBalanceSetup", Values: Values{0: "Auto", 1: "Manual"}},
	0x0043: {Name: "CameraTemperature"},
	0x0050: {Name: "RawDataCFAPattern"},
	0x0100: {Name: "FaceDetect", Values: Values{0: "Off", 1: "On"}},
	0x0120: {Name: "FaceRecognition", Values: Values{0: "Off", 1: "On"}},
	0x0123: {Name: "FaceName"},
	0x0140: {Name: "SmartRange"},
	0x0A01: {Name: "FirmwareName"},
	0x0A02: {Name: "SensorAreas"},
	0x0A03: {Name: "ColorSpace", Values: Values{0: "sRGB", 1: "Adobe RGB"}},
	0x0A04: {Name: "SmartRange2"},
	0x0A10: {Name: "EncryptionKey"},
	0xA001: {Name: "ColorSpace2"},
	0xA003: {Name: "ExposureCompensation"},
	0xA004: {Name: "Contrast"},
	0xA010: {Name: "ColorMode"},
	0xA011: {Name: "Sharpness"},
	0xA012: {Name: "Saturation"},
	0xA013: {Name: "WB_RGGBLevels"},
	0xA018: {Name: "ExposureBracketValue"},
	0xA019: {Name: "ISO"},
	0xA020: {Name: "DigitalZoom"},
	0xA021: {Name: "HDR"},
	0xA028: {Name: "PanoramaMode"},
	0xA030: {Name: "Highlight"},
	0xA031: {Name: "Shadow"},
}

var kodakMain = Table{
	0x0001: {Name: "KodakModel"},
	0x0003: {Name: "YearCreated"},
	0x0005: {Name: "BurstMode", Values: Values{0: "Off", 1: "On"}},
	0x000E: {Name: "KodakImageWidth"},
	0x000F: {Name: "KodakImageHeight"},
	0x0010: {Name: "MonthDayCreated"},
	0x0011: {Name: "TimeCreated"},
	0x0012: {Name: "BurstMode2"},
	0x001C: {Name: "SerialNumber"},
	0x001D: {Name: "WhiteBalance", Values: Values{0: "Auto", 1: "Flash", 2: "Tungsten", 3: "Daylight"}},
	0x0024: {Name: "FlashMode", Values: Values{0: "Auto", 1: "Fill Flash", 2: "Off", 3: "Red-Eye"}},
	0x0025: {Name: "FlashFired", Values: Values{0: "No", 1: "Yes"}},
	0x0026: {Name: "ISOSetting"},
	0x0027: {Name: "ISO"},
	0x0028: {Name: "TotalZoom"},
	0x0029: {Name: "DateTimeStamp"},
	0x0102: {Name: "FocusMode", Values: Values{0: "Normal", 2: "Macro"}},
	0x0104: {Name: "Quality", Values: Values{1: "Fine", 2: "Normal"}},
	0x0108: {Name: "Flash"},
	0x0109: {Name: "RedEyeReduction", Values: Values{0: "Off", 1: "On"}},
	0x010A: {Name: "DigitalZoom"},
	0x010F: {Name: "Sharpness"},
}

var sigmaMain = Table{
	0x0002: {Name: "SerialNumber"},
	0x0003: {Name: "DriveMode"},
	0x0004: {Name: "ResolutionMode"},
	0x0005: {Name: "AFMode"},
	0x0006: {Name: "FocusSetting"},
	0x0007: {Name: "WhiteBalance"},
	0x0008: {Name: "ExposureMode", Values: Values{'A': "Aperture-priority AE", 'M': "Manual", 'P': "Program AE", 'S': "Shutter speed priority AE"}},
	0x0009: {Name: "MeteringMode", Values: Values{'A': "Average", 'C': "Center-weighted average", '8': "Multi-segment"}},
	0x000A: {Name: "LensFocalRange"},
	0x000B: {Name: "ColorSpace"},
	0x000C: {Name: "ExposureCompensation"},
	0x000D: {Name: "Contrast"},
	0x000E: {Name: "Shadow"},
	0x000F: {Name: "Highlight"},
	0x0010: {Name: "Saturation"},
	0x0011: {Name: "Sharpness"},
	0x0012: {Name: "X3FillLight"},
	0x0014: {Name: "ColorAdjustment"},
	0x0015: {Name: "AdjustmentMode"},
	0x0016: {Name: "Quality"},
	0x0017: {Name: "Firmware"},
	0x0018: {Name: "Software"},
	0x0019: {Name: "AutoBracket"},
}

var sanyoMain = Table{
	0x00FF: {Name: "MakerNoteOffset"},
	0x0100: {Name: "SanyoThumbnail"},
	0x0200: {Name: "SpecialMode"},
	0x0201: {Name: "SanyoQuality"},
	0x0202: {Name: "Macro", Values: Values{0: "Normal", 1: "Macro", 2: "View", 3: "Manual"}},
	0x0204: {Name: "DigitalZoom"},
	0x0207: {Name: "SanyoFirmwareVersion"},
	0x0208: {Name: "PictInfo"},
	0x0209: {Name: "CameraID"},
	0x020E: {Name: "SequentialShot", Values: Values{0: "None", 1: "Standard", 2: "Best", 3: "Adjust Exposure"}},
	0x020F: {Name: "WideRange", Values: Values{0: "Off", 1: "On"}},
	0x0210: {Name: "ColorAdjustmentMode", Values: Values{0: "Off", 1: "On"}},
	0x0213: {Name: "QuickShot", Values: Values{0: "Off", 1: "On"}},
	0x0214: {Name: "SelfTimer", Values: Values{0: "Off", 1: "On", 2: "2 s"}},
	0x0216: {Name: "VoiceMemo", Values: Values{0: "Off", 1: "On"}},
	0x0217: {Name: "RecordShutterRelease", Values: Values{0: "Record while down", 1: "Press start, press stop"}},
	0x0218: {Name: "FlickerReduce", Values: Values{0: "Off", 1: "On"}},
	0x0219: {Name: "OpticalZoomOn", Values: Values{0: "Off", 1: "On"}},
	0x021B: {Name: "DigitalZoomOn", Values: Values{0: "Off", 1: "On"}},
	0x021D: {Name: "LightSourceSpecial", Values: Values{0: "Off", 1: "On"}},
	0x021E: {Name: "Resaved", Values: Values{0: "No", 1: "Yes"}},
	0x021F: {Name: "SceneSelect", Values: Values{0: "Off", 1: "Sport", 2: "TV", 3: "Night", 4: "User 1", 5: "User 2", 6: "Lamp"}},
	0x0223: {Name: "ManualFocusDistance"},
	0x0224: {Name: "SequenceShotInterval", Values: Values{0: "5 frames/s", 1: "10 frames/s", 2: "15 frames/s", 3: "20 frames/s"}},
	0x0225: {Name: "FlashMode", Values: Values{0: "Auto", 1: "Force", 2: "Disabled", 3: "Red eye"}},
	0x0E00: {Name: "PrintIM"},
	0x0F00: {Name: "DataDump"},
}

// Casio has two numbering schemes; the "QVC" header selects the second.
var casioType1 = Table{
	0x0001: {Name: "RecordingMode", Values: Values{1: "Single Shutter", 2: "Panorama", 3: "Night Scene", 4: "Portrait", 5: "Landscape"}},
	0x0002: {Name: "Quality", Values: Values{1: "Economy", 2: "Normal", 3: "Fine"}},
	0x0003: {Name: "FocusMode", Values: Values{2: "Macro", 3: "Auto", 4: "Manual", 5: "Infinity", 7: "Spot AF"}},
	0x0004: {Name: "FlashMode", Values: Values{1: "Auto", 2: "On", 3: "Off", 4: "Off", 5: "Red-eye Reduction"}},
	0x0005: {Name: "FlashIntensity", Values: Values{11: "Weak", 12: "Low", 13: "Normal", 14: "High", 15: "Strong"}},
	0x0006: {Name: "ObjectDistance"},
	0x0007: {Name: "WhiteBalance", Values: Values{1: "Auto", 2: "Tungsten", 3: "Daylight", 4: "Fluorescent", 5: "Shade", 129: "Manual"}},
	0x000A: {Name: "DigitalZoom", Values: Values{0x10000: "Off", 0x10001: "2x", 0x19999: "1.6x", 0x20000: "2x", 0x33333: "3.2x", 0x40000: "4x"}},
	0x000B: {Name: "Sharpness", Values: Values{0: "Normal", 1: "Soft", 2: "Hard", 16: "Normal", 17: "+1", 18: "-1"}},
	0x000C: {Name: "Contrast", Values: Values{0: "Normal", 1: "Low", 2: "High", 16: "Normal", 17: "+1", 18: "-1"}},
	0x000D: {Name: "Saturation", Values: Values{0: "Normal", 1: "Low", 2: "High", 16: "Normal", 17: "+1", 18: "-1"}},
	0x0014: {Name: "ISO"},
	0x0015: {Name: "FirmwareDate"},
	0x0016: {Name: "Enhancement", Values: Values{1: "Off", 2: "Red", 3: "Green", 4: "Blue", 5: "Flesh Tones"}},
	0x0017: {Name: "ColorFilter", Values: Values{1: "Off", 2: "Black & White", 3: "Sepia", 4: "Red", 5: "Green", 6: "Blue", 7: "Yellow", 8: "Pink", 9: "Purple"}},
	0x0018: {Name: "AFPoint", Values: Values{1: "Center", 2: "Upper Left", 3: "Upper Right", 4: "Near Left/Right of Center", 5: "Far Left/Right of Center", 6: "Far Left/Right of Center/Bottom", 7: "Top Near-left", 8: "Near Upper/Left", 9: "Top Near-right", 10: "Top Left", 11: "Top Center", 12: "Top Right", 13: "Center Left", 14: "Center Right", 15: "Bottom Left", 16: "Bottom Center", 17: "Bottom Right"}},
	0x0019: {Name: "FlashIntensity2", Values: Values{1: "Normal", 2: "Weak", 3: "Strong"}},
	0x0E00: {Name: "PrintIM"},
}

var casioType2 = Table{
	0x0002: {Name: "PreviewImageSize"},
	0x0003: {Name: "PreviewImageLength", Structural: true},
	0x0004: {Name: "PreviewImageStart", Structural: true},
	0x0008: {Name: "QualityMode", Values: Values{0: "Economy", 1: "Normal", 2: "Fine"}},
	0x0009: {Name: "CasioImageSize"},
	0x000D: {Name: "FocusMode", Values: Values{0: "Normal", 1: "Macro"}},
	0x0014: {Name: "ISO", Values: Values{3: "50", 4: "64", 6: "100", 9: "200"}},
	0x0019: {Name: "WhiteBalance", Values: Values{0: "Auto", 1: "Daylight", 2: "Shade", 3: "Tungsten", 4: "Fluorescent", 5: "Manual"}},
	0x001D: {Name: "FocalLength"},
	0x001F: {Name: "Saturation", Values: Values{0: "Low", 1: "Normal", 2: "High"}},
	0x0020: {Name: "Contrast", Values: Values{0: "Low", 1: "Normal", 2: "High"}},
	0x0021: {Name: "Sharpness", Values: Values{0: "Soft", 1: "Normal", 2: "Hard"}},
	0x0E00: {Name: "PrintIM"},
	0x2000: {Name: "PreviewImage"},
	0x2001: {Name: "FirmwareDate"},
	0x2011: {Name: "WhiteBalanceBias"},
	0x2012: {Name: "WhiteBalance2", Values: Values{0: "Manual", 1: "Daylight", 2: "Cloudy", 3: "Shade", 4: "Flash?", 6: "Fluorescent", 9: "Tungsten?", 10: "Tungsten", 12: "Flash"}},
	0x2021: {Name: "AFPointPosition"},
	0x2022: {Name: "ObjectDistance"},
	0x2034: {Name: "FlashDistance"},
	0x2076: {Name: "SpecialEffectMode"},
	0x3000: {Name: "RecordMode", Values: Values{2: "Program AE", 3: "Shutter Priority", 4: "Aperture Priority", 5: "Manual", 6: "Best Shot", 17: "Movie", 19: "Movie (19)", 20: "YouTube Movie"}},
	0x3001: {Name: "ReleaseMode", Values: Values{1: "Normal", 3: "AE Bracketing", 11: "WB Bracketing", 13: "Contrast Bracketing", 19: "High Speed Burst"}},
	0x3002: {Name: "Quality", Values: Values{1: "Economy", 2: "Normal", 3: "Fine"}},
	0x3003: {Name: "FocusMode2", Values: Values{0: "Manual", 1: "Focus Lock", 2: "Macro", 3: "Single-Area Auto Focus", 5: "Infinity", 6: "Multi-Area Auto Focus", 8: "Super Macro"}},
	0x3006: {Name: "HometownCity"},
	0x3007: {Name: "BestShotMode"},
	0x3008: {Name: "AutoISO", Values: Values{1: "On", 2: "Off", 7: "On (high sensitivity)", 8: "On (anti-shake)", 10: "High Speed"}},
	0x3009: {Name: "AFMode", Values: Values{0: "Off", 1: "Spot", 2: "Multi", 3: "Face Detection", 4: "Tracking", 5: "Intelligent"}},
	0x3011: {Name: "Sharpness2"},
	0x3012: {Name: "Contrast2"},
	0x3013: {Name: "Saturation2"},
	0x3014: {Name: "ISO2"},
	0x3015: {Name: "ColorMode", Values: Values{0: "Off", 2: "Black & White", 3: "Sepia"}},
	0x3016: {Name: "Enhancement", Values: Values{0: "Off", 1: "Scenery", 3: "Green", 5: "Underwater", 9: "Flesh Tones"}},
	0x3017: {Name: "ColorFilter", Values: Values{0: "Off", 1: "Blue", 3: "Green", 4: "Yellow", 5: "Red", 6: "Purple", 7: "Pink"}},
	0x301C: {Name: "SequenceNumber"},
	0x3020: {Name: "ImageStabilization"},
}

var vendorTables = map[string]Table{
	"Canon":     canonMain,
	"Nikon":     nikonMain,
	"Sony":      sonyMain,
	"Olympus":   olympusMain,
	"Panasonic": panasonicMain,
	"Fujifilm":  fujifilmMain,
	"Pentax":    pentaxMain,
	"Leica":     leicaMain,
	"Samsung":   samsungMain,
	"Kodak":     kodakMain,
	"Sigma":     sigmaMain,
	"Sanyo":     sanyoMain,
	"Casio":     casioType1,
	"Casio2":    casioType2,
}

// Sub-IFD tables keyed by vendor, then by the parent tag that points to them.
var vendorSubTables = map[string]map[uint16]Table{
	"Olympus": {
		0x2010: olympusEquipment,
		0x2020: olympusCameraSettings,
	},
}

var binaryTables = map[string]map[uint16]*BinaryTable{
	"Canon": {
		0x0001: &canonCameraSettings,
		0x0002: &canonFocalLength,
		0x0004: &canonShotInfo,
		0x0012: &canonAFInfo,
	},
	"Nikon": {
		0x0025: &nikonISOInfo,
	},
}

// Vendor returns the main MakerNote table of a vendor.
func Vendor(name string) (Table, bool) {
	t, ok := vendorTables[name]
	return t, ok
}

// VendorSubIFD returns the table for a vendor sub-IFD pointed to by tag.
func VendorSubIFD(vendor string, tag uint16) (Table, bool) {
	t, ok := vendorSubTables[vendor][tag]
	return t, ok
}

// Binary returns the binary-array layout for a vendor tag.
func Binary(vendor string, tag uint16) (*BinaryTable, bool) {
	t, ok := binaryTables[vendor][tag]
	return t, ok
}

// Vendors lists the vendor names with tables, for diagnostics.
func Vendors() []string {
	return []string{"Canon", "Nikon", "Sony", "Olympus", "Panasonic", "Fujifilm", "Pentax",
		"Leica", "Samsung", "Kodak", "Sigma", "Sanyo", "Casio"}
}
