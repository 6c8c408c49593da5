package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/brgyhealth/bhc_api/internal/models"
	"github.com/brgyhealth/bhc_api/internal/utils"
	"github.com/brgyhealth/bhc_api/pkg/portal"
)

// Form field names used in validation error flags. Address levels reuse the
// OCR field names so one key space covers both.
const (
	fieldConfirmPassword = "confirm_password"
	fieldPassword        = "password"
	fieldRegion          = "region"
)

// ImageSide selects which side of the document an upload is for.
type ImageSide string

const (
	SideFront ImageSide = "front"
	SideBack  ImageSide = "back"
)

// RegistrationService drives a registration session through
// upload → scanning → review → submitting → done. Failures drop the session
// back to the state it came from so the user can retry.
type RegistrationService struct {
	store    *SessionStore
	images   *ImageService
	scanner  *ScanService
	resolver *ResolverService
	portal   *portal.Client
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(store *SessionStore, images *ImageService, scanner *ScanService, resolver *ResolverService, portalClient *portal.Client) *RegistrationService {
	return &RegistrationService{
		store:    store,
		images:   images,
		scanner:  scanner,
		resolver: resolver,
		portal:   portalClient,
	}
}

// CreateSession starts a new registration in the upload state.
func (s *RegistrationService) CreateSession() (*models.RegistrationSession, error) {
	return s.store.Create()
}

// GetSession returns the session with the given id.
func (s *RegistrationService) GetSession(id string) (*models.RegistrationSession, error) {
	return s.store.Get(id)
}

// SetDocumentType declares which ID document the user will scan.
func (s *RegistrationService) SetDocumentType(id string, docType models.DocumentType) (*models.RegistrationSession, error) {
	if !docType.Valid() {
		return nil, utils.ErrInvalidDocumentType
	}
	return s.store.Update(id, func(sess *models.RegistrationSession) error {
		sess.DeclaredType = docType
		return nil
	})
}

// AttachImage compresses and stores a document photo. A document type must
// be declared first; without one the attachment is rejected and discarded
// before any processing.
func (s *RegistrationService) AttachImage(id string, side ImageSide, data []byte) (*models.RegistrationSession, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.DeclaredType == "" {
		return nil, utils.ErrNoDocumentType
	}

	compressed, err := s.images.Compress(data)
	if err != nil {
		return nil, err
	}

	return s.store.Update(id, func(sess *models.RegistrationSession) error {
		switch side {
		case SideBack:
			sess.BackImage = compressed
		default:
			sess.FrontImage = compressed
		}
		return nil
	})
}

// Scan submits the stored images to the OCR service and populates the form.
// A successful scan replaces any prior extraction wholesale: previously
// populated personal/address fields are cleared before the new values are
// applied, while the uploaded images survive. The session lands in review;
// address resolution then runs and writes its outcome into the same address
// state (a concurrent user edit can win over it).
func (s *RegistrationService) Scan(ctx context.Context, id string) (*models.RegistrationSession, error) {
	var front, back []byte
	var declared models.DocumentType
	_, err := s.store.Update(id, func(sess *models.RegistrationSession) error {
		if sess.DeclaredType == "" {
			return utils.ErrNoDocumentType
		}
		if len(sess.FrontImage) == 0 {
			return utils.ErrNoFrontImage
		}
		if sess.State != models.StateUpload && sess.State != models.StateReview {
			return utils.ErrInvalidState
		}
		front, back = sess.FrontImage, sess.BackImage
		declared = sess.DeclaredType
		sess.State = models.StateScanning
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.scanner.Scan(ctx, front, back, declared)
	if err != nil {
		// Scan failure returns the session to upload for a retry.
		_, _ = s.store.Update(id, func(sess *models.RegistrationSession) error {
			sess.State = models.StateUpload
			return nil
		})
		return nil, err
	}

	sess, err := s.store.Update(id, func(sess *models.RegistrationSession) error {
		applyScan(sess, result)
		sess.State = models.StateReview
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Resolve the extracted place names outside the store lock, then commit
	// the outcome. Most recent write to the address state wins.
	addr := sess.Form.Address
	s.resolver.ResolveFromScan(ctx, &addr, result.Fields)
	return s.store.Update(id, func(sess *models.RegistrationSession) error {
		sess.Form.Address = addr
		return nil
	})
}

// SkipScan moves straight to review with blank fields.
func (s *RegistrationService) SkipScan(id string) (*models.RegistrationSession, error) {
	return s.store.Update(id, func(sess *models.RegistrationSession) error {
		if sess.State != models.StateUpload {
			return utils.ErrInvalidState
		}
		sess.State = models.StateReview
		return nil
	})
}

// UpdateFields applies manual edits to the form. Values run through the same
// normalization the OCR autofill uses, and any field already flagged invalid
// is re-validated so its flag clears the moment the value is fixed.
func (s *RegistrationService) UpdateFields(id string, updates map[string]string) (*models.RegistrationSession, error) {
	return s.store.Update(id, func(sess *models.RegistrationSession) error {
		for name, value := range updates {
			setFormField(&sess.Form, name, value)
			if sess.Form.Errors[name] {
				revalidateField(&sess.Form, name)
			}
		}
		return nil
	})
}

// SelectRegion commits a user region choice and loads the next level.
func (s *RegistrationService) SelectRegion(ctx context.Context, id, code, name string) (*models.RegistrationSession, error) {
	return s.selectLevel(id, func(addr *models.AddressSelection) {
		s.resolver.SelectRegion(ctx, addr, code, name)
	})
}

// SelectProvince commits a user province choice.
func (s *RegistrationService) SelectProvince(ctx context.Context, id, code, name string) (*models.RegistrationSession, error) {
	return s.selectLevel(id, func(addr *models.AddressSelection) {
		s.resolver.SelectProvince(ctx, addr, code, name)
	})
}

// SelectCity commits a user city choice.
func (s *RegistrationService) SelectCity(ctx context.Context, id, code, name string) (*models.RegistrationSession, error) {
	return s.selectLevel(id, func(addr *models.AddressSelection) {
		s.resolver.SelectCity(ctx, addr, code, name)
	})
}

// SelectBarangay commits a user barangay choice.
func (s *RegistrationService) SelectBarangay(id, code, name string) (*models.RegistrationSession, error) {
	return s.selectLevel(id, func(addr *models.AddressSelection) {
		s.resolver.SelectBarangay(addr, code, name)
	})
}

// selectLevel runs a cascade transition on a copy of the address state, then
// commits it. The fetch happens outside the store lock; concurrent writers
// race and the last commit wins.
func (s *RegistrationService) selectLevel(id string, apply func(*models.AddressSelection)) (*models.RegistrationSession, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	addr := sess.Form.Address
	apply(&addr)
	return s.store.Update(id, func(sess *models.RegistrationSession) error {
		sess.Form.Address = addr
		return nil
	})
}

// Submit validates the form and posts the registration. Any validation
// violation aborts before the network call with every violating field
// flagged. On success the session resets for the next registrant, keeping
// only the uploaded images.
func (s *RegistrationService) Submit(ctx context.Context, id string) (*models.RegistrationSession, error) {
	var form models.RegistrationForm
	_, err := s.store.Update(id, func(sess *models.RegistrationSession) error {
		if sess.State != models.StateReview {
			return utils.ErrInvalidState
		}

		errs := ValidateForm(&sess.Form)
		if len(errs) > 0 {
			sess.Form.Errors = errs
			return utils.ErrValidation
		}
		sess.Form.Errors = make(map[string]bool)
		sess.State = models.StateSubmitting
		form = sess.Form
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.portal.Register(ctx, buildRegisterForm(&form)); err != nil {
		_, _ = s.store.Update(id, func(sess *models.RegistrationSession) error {
			sess.State = models.StateReview
			// A duplicate-email style message points at the email field.
			if strings.Contains(strings.ToLower(err.Error()), "email") {
				sess.Form.Errors[models.FieldEmail] = true
			}
			return nil
		})
		return nil, err
	}

	var snapshot *models.RegistrationSession
	if _, err := s.store.Update(id, func(sess *models.RegistrationSession) error {
		sess.State = models.StateDone
		snapshot = sess.Clone()
		// The live session resets for the next registrant; only the images
		// survive so they need not be re-uploaded.
		resetForNext(sess)
		return nil
	}); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ValidateForm checks the required set and field shapes, returning a flag
// per violating field. The province requirement is waived under NCR, which
// has no province level.
func ValidateForm(form *models.RegistrationForm) map[string]bool {
	errs := make(map[string]bool)

	required := map[string]string{
		models.FieldFirstName: form.Personal.FirstName,
		models.FieldLastName:  form.Personal.LastName,
		models.FieldEmail:     form.Personal.Email,
		models.FieldDOB:       form.Personal.DateOfBirth,
		models.FieldGender:    form.Personal.Gender,
		models.FieldPhone:     form.Personal.Contact,
		fieldRegion:           form.Address.RegionName,
		models.FieldCity:      form.Address.City,
		models.FieldBarangay:  form.Address.Barangay,
		fieldPassword:         form.Creds.Password,
		fieldConfirmPassword:  form.Creds.ConfirmPassword,
	}
	if !models.IsNCR(form.Address.RegionCode) {
		required[models.FieldProvince] = form.Address.Province
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			errs[name] = true
		}
	}

	if form.Personal.Email != "" && !ValidEmail(form.Personal.Email) {
		errs[models.FieldEmail] = true
	}
	if form.Personal.Contact != "" && !ValidPhone(form.Personal.Contact) {
		errs[models.FieldPhone] = true
	}
	if form.Creds.Password != "" && !ValidPassword(form.Creds.Password) {
		errs[fieldPassword] = true
	}
	if form.Creds.ConfirmPassword != "" && form.Creds.ConfirmPassword != form.Creds.Password {
		errs[fieldConfirmPassword] = true
	}
	return errs
}

// applyScan replaces the prior extraction wholesale and populates the form.
// Every extracted field overwrites its form field through the shared
// normalization; confidence is advisory and never gates population.
func applyScan(sess *models.RegistrationSession, result *models.ScanResult) {
	// Discard prior scan output and prior form values the scan populates.
	// Credentials and images are untouched.
	sess.Form.Personal = models.PersonalInfo{}
	sess.Form.Street = models.StreetAddress{}
	sess.Form.Address = models.AddressSelection{}
	sess.Form.Errors = make(map[string]bool)

	autoFilled := make(map[string]bool, len(result.Fields))
	for name, value := range result.Fields {
		if value == "" {
			continue
		}
		setFormField(&sess.Form, name, value)
		autoFilled[name] = result.Confidence[name] > 0
	}

	sess.OCR = models.OCRMeta{
		Fields:       result.Fields,
		Confidence:   result.Confidence,
		RawFront:     result.RawFront,
		DetectedType: result.DetectedType,
		AutoFilled:   autoFilled,
	}
}

// setFormField writes one named field, applying the shared per-field
// normalization (phone numbers canonicalize to the +63 form).
func setFormField(form *models.RegistrationForm, name, value string) {
	switch name {
	case models.FieldFirstName:
		form.Personal.FirstName = value
	case models.FieldMiddleName:
		form.Personal.MiddleName = value
	case models.FieldLastName:
		form.Personal.LastName = value
	case models.FieldSuffix:
		form.Personal.Suffix = value
	case models.FieldDOB:
		form.Personal.DateOfBirth = value
	case models.FieldGender:
		form.Personal.Gender = value
	case models.FieldPhone:
		form.Personal.Contact = NormalizePhone(value)
	case models.FieldEmail:
		form.Personal.Email = strings.TrimSpace(value)
	case models.FieldPhilHealthID:
		form.Personal.PhilHealthID = value
	case models.FieldHouseNumber:
		form.Street.HouseNumber = value
	case models.FieldBlockNumber:
		form.Street.BlockNumber = value
	case models.FieldLotNumber:
		form.Street.LotNumber = value
	case models.FieldStreetName:
		form.Street.StreetName = value
	case models.FieldSubdivision:
		form.Street.Subdivision = value
	case models.FieldFullAddress:
		form.Street.FullAddress = value
	case models.FieldZipCode:
		form.Address.ZipCode = value
	case models.FieldRegionName, fieldRegion:
		form.Address.RegionName = value
	case models.FieldProvince:
		form.Address.Province = value
	case models.FieldCity:
		form.Address.City = value
	case models.FieldBarangay:
		form.Address.Barangay = value
	case fieldPassword:
		form.Creds.Password = value
	case fieldConfirmPassword:
		form.Creds.ConfirmPassword = value
	default:
		log.Debug().Str("field", name).Msg("ignoring unknown form field")
	}
}

// revalidateField re-runs the shape check for a single flagged field.
func revalidateField(form *models.RegistrationForm, name string) {
	all := ValidateForm(form)
	form.Errors[name] = all[name]
}

// buildRegisterForm maps the session form onto the backend payload.
func buildRegisterForm(form *models.RegistrationForm) portal.RegisterForm {
	return portal.RegisterForm{
		FirstName:    form.Personal.FirstName,
		MiddleName:   form.Personal.MiddleName,
		LastName:     form.Personal.LastName,
		Suffix:       form.Personal.Suffix,
		DateOfBirth:  form.Personal.DateOfBirth,
		Gender:       form.Personal.Gender,
		Contact:      form.Personal.Contact,
		Email:        form.Personal.Email,
		PhilHealthID: form.Personal.PhilHealthID,
		Region:       form.Address.RegionName,
		Province:     form.Address.Province,
		City:         form.Address.City,
		Barangay:     form.Address.Barangay,
		HouseNumber:  form.Street.HouseNumber,
		BlockNumber:  form.Street.BlockNumber,
		LotNumber:    form.Street.LotNumber,
		StreetName:   form.Street.StreetName,
		Subdivision:  form.Street.Subdivision,
		ZipCode:      form.Address.ZipCode,
		FullAddress:  form.Street.FullAddress,
		Password:     form.Creds.Password,
	}
}

// resetForNext clears everything except the uploaded images so another
// registration can reuse them without a re-upload.
func resetForNext(sess *models.RegistrationSession) {
	sess.Form = models.NewRegistrationForm()
	sess.OCR = models.OCRMeta{}
	sess.DeclaredType = ""
	sess.State = models.StateUpload
}
