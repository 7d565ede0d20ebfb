package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/platform/metrics"
	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/ports/session"

	"github.com/google/uuid"
)

var (
	errRecordNotFound      = apperr.NotFound("Record not found.")
	errCreatedNotFound     = apperr.NotFound("Failed to retrieve the newly created record.")
	errMissingFields       = apperr.BadRequest("Missing required fields.")
	errInvalidLab          = apperr.BadRequest("Invalid lab description.")
	errSurgeryTypeRequired = apperr.BadRequest("Surgery type is required when hadSurgery is true.")
	errSurgeryDateNoType   = apperr.BadRequest("Surgery type is required when a surgery date is given.")
	errClinicianCreateDiag = apperr.Forbidden("Clinicians cannot add a diagnosis when creating a record.")
	errDiagnosisForbidden  = apperr.Forbidden("Only doctors can add or edit a diagnosis.")
	errStaffOnly           = apperr.Forbidden("Only clinic staff can modify medical records.")
	errRecordForbidden     = apperr.Forbidden("You do not have access to this record.")

	msgUpdateFailed = "Server error while updating medical record."
	msgCreateFailed = "Server error while adding medical record."
	msgFetchFailed  = "Failed to fetch visit records"
)

// PetDirectory resuelve el dueño de una mascota (implementado por pets.Service).
type PetDirectory interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

// AccessGate valida el código de acceso de la sesión (implementado por accesscode.Gate).
type AccessGate interface {
	Validate(sess *session.Session, code string) error
}

type Options struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

type Service struct {
	repo    Repository
	pets    PetDirectory
	gate    AccessGate
	log     logger.Logger
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, petDir PetDirectory, gate AccessGate, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		pets:    petDir,
		gate:    gate,
		log:     log.With(map[string]any{"component": "records"}),
		metrics: opts.Metrics,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Create registra una visita con sus sub-entidades opcionales en una sola transacción.
func (s *Service) Create(ctx context.Context, actor auth.Claims, in CreateInput) (out Detail, err error) {
	defer func() { s.metrics.RecordOp("create", outcome(err)) }()

	switch actor.Role {
	case auth.RoleDoctor:
	case auth.RoleClinician:
		if !blank(in.DiagnosisText) {
			return Detail{}, errClinicianCreateDiag
		}
	case auth.RoleAdmin:
		if !blank(in.DiagnosisText) {
			return Detail{}, errDiagnosisForbidden
		}
	default:
		return Detail{}, errStaffOnly
	}

	if in.missingRequired() {
		return Detail{}, errMissingFields
	}
	if in.SurgeryDate != nil && blank(in.SurgeryType) {
		return Detail{}, errSurgeryDateNoType
	}
	if in.LabDescription != nil && strings.TrimSpace(*in.LabDescription) == "" {
		in.LabDescription = nil
	}

	if _, err := s.pets.OwnerOf(ctx, in.PetID); err != nil {
		return Detail{}, err
	}

	rec := Record{
		ID:             s.newID(),
		PetID:          in.PetID,
		Date:           *in.Date,
		Weight:         *in.Weight,
		Temperature:    *in.Temperature,
		Condition:      strings.TrimSpace(*in.Condition),
		Symptom:        strings.TrimSpace(*in.Symptom),
		RecentVisit:    strings.TrimSpace(*in.RecentVisit),
		RecentPurchase: strings.TrimSpace(*in.RecentPurchase),
		Purpose:        strings.TrimSpace(*in.Purpose),
		LabFile:        trimmed(in.LabFile),
	}

	err = s.repo.InTx(ctx, func(tx Tx) error {
		if in.LabDescription != nil {
			labID, err := s.lookupOrCreateLab(ctx, tx, *in.LabDescription)
			if err != nil {
				return err
			}
			rec.LabID = &labID
		}

		if text := trimmed(in.DiagnosisText); text != nil {
			d := Diagnosis{ID: s.newID(), Text: *text}
			if err := tx.InsertDiagnosis(ctx, d); err != nil {
				return err
			}
			rec.DiagnosisID = &d.ID
		}

		if typ := trimmed(in.SurgeryType); typ != nil {
			sg := Surgery{ID: s.newID(), Type: *typ, Date: in.SurgeryDate}
			if err := tx.InsertSurgery(ctx, sg); err != nil {
				return err
			}
			rec.SurgeryID = &sg.ID
		}

		if err := tx.InsertRecord(ctx, rec); err != nil {
			return err
		}
		if rec.LabID != nil {
			if err := tx.LinkLab(ctx, rec.ID, *rec.LabID); err != nil {
				return err
			}
		}

		d, err := tx.GetDetail(ctx, rec.ID)
		if errors.Is(err, ErrNotFound) {
			return errCreatedNotFound
		}
		if err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return Detail{}, s.serverErr(err, msgCreateFailed, rec.ID)
	}

	s.log.Info("medical record created", map[string]any{
		"record_id": rec.ID,
		"pet_id":    rec.PetID,
		"user_id":   actor.UserID,
	})
	return out, nil
}

// Update aplica un Patch parcial. Validación y autorización ocurren antes de
// cualquier escritura; todas las escrituras van en una única transacción.
func (s *Service) Update(ctx context.Context, recordID string, actor auth.Claims, sess *session.Session, p Patch) (out Detail, err error) {
	defer func() { s.metrics.RecordOp("update", outcome(err)) }()

	if !actor.Role.IsStaff() {
		return Detail{}, errStaffOnly
	}
	if strings.TrimSpace(recordID) == "" {
		return Detail{}, errRecordNotFound
	}

	err = s.repo.InTx(ctx, func(tx Tx) error {
		cur, err := tx.GetRecord(ctx, recordID)
		if errors.Is(err, ErrNotFound) {
			return errRecordNotFound
		}
		if err != nil {
			return err
		}

		// validaciones (sin escribir nada todavía)
		if p.DiagnosisText != nil {
			if err := s.authorizeDiagnosis(actor, sess, p.AccessCode); err != nil {
				return err
			}
		}
		if p.LabDescription != nil && strings.TrimSpace(*p.LabDescription) == "" {
			return errInvalidLab
		}
		if p.HadSurgery != nil && *p.HadSurgery && cur.SurgeryID == nil && blank(p.SurgeryType) {
			return errSurgeryTypeRequired
		}

		if p.DiagnosisText != nil {
			if err := s.applyDiagnosis(ctx, tx, &cur, strings.TrimSpace(*p.DiagnosisText)); err != nil {
				return err
			}
		}

		if p.HadSurgery != nil {
			if err := s.applySurgery(ctx, tx, &cur, *p.HadSurgery, p.SurgeryType, p.SurgeryDate); err != nil {
				return err
			}
		}

		if p.LabDescription != nil {
			labID, err := s.lookupOrCreateLab(ctx, tx, *p.LabDescription)
			if err != nil {
				return err
			}
			if err := tx.LinkLab(ctx, cur.ID, labID); err != nil {
				return err
			}
			cur.LabID = &labID
		}

		p.apply(&cur)

		if err := tx.UpdateRecord(ctx, cur); err != nil {
			return err
		}

		d, err := tx.GetDetail(ctx, cur.ID)
		if errors.Is(err, ErrNotFound) {
			return errRecordNotFound
		}
		if err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return Detail{}, s.serverErr(err, msgUpdateFailed, recordID)
	}

	if p.DiagnosisText != nil && actor.Role == auth.RoleClinician {
		s.log.Info("diagnosis edited with access code", map[string]any{
			"record_id": recordID,
			"user_id":   actor.UserID,
		})
	}
	return out, nil
}

// GetDetail: staff ve cualquier record, un owner sólo los de sus mascotas.
func (s *Service) GetDetail(ctx context.Context, recordID string, actor auth.Claims) (Detail, error) {
	d, err := s.repo.GetDetail(ctx, recordID)
	if errors.Is(err, ErrNotFound) {
		return Detail{}, errRecordNotFound
	}
	if err != nil {
		return Detail{}, apperr.Server(msgFetchFailed, err)
	}

	if err := s.authorizeRead(ctx, actor, d.PetID); err != nil {
		if apperr.KindOf(err) == apperr.KindForbidden {
			return Detail{}, errRecordForbidden
		}
		return Detail{}, err
	}
	return d, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string, actor auth.Claims, f ListFilter) ([]Detail, error) {
	if strings.TrimSpace(petID) == "" {
		return nil, apperr.BadRequest("pet_id is required")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, apperr.BadRequest("start_date must be before end_date")
	}
	if err := s.authorizeRead(ctx, actor, petID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListByPet(ctx, petID, f)
	if err != nil {
		return nil, apperr.Server(msgFetchFailed, err)
	}
	return items, nil
}

func (s *Service) authorizeRead(ctx context.Context, actor auth.Claims, petID string) error {
	ownerID, err := s.pets.OwnerOf(ctx, petID)
	if err != nil {
		return err
	}
	if !pets.CanAccess(actor, ownerID) {
		return apperr.Forbidden("You do not have access to this pet.")
	}
	return nil
}

// authorizeDiagnosis: switch exhaustivo sobre el rol, sin fall-through.
func (s *Service) authorizeDiagnosis(actor auth.Claims, sess *session.Session, code string) error {
	switch actor.Role {
	case auth.RoleDoctor:
		return nil
	case auth.RoleClinician:
		return s.gate.Validate(sess, code)
	case auth.RoleOwner, auth.RoleAdmin, auth.RoleUnknown:
		return errDiagnosisForbidden
	default:
		return errDiagnosisForbidden
	}
}

func (s *Service) applyDiagnosis(ctx context.Context, tx Tx, cur *Record, text string) error {
	if cur.DiagnosisID == nil {
		d := Diagnosis{ID: s.newID(), Text: text}
		if err := tx.InsertDiagnosis(ctx, d); err != nil {
			return err
		}
		cur.DiagnosisID = &d.ID
		return nil
	}
	return tx.UpdateDiagnosisText(ctx, *cur.DiagnosisID, text)
}

// applySurgery:
//
//	ausente  + true  -> crear y vincular
//	presente + true  -> actualizar tipo/fecha
//	presente + false -> desvincular y luego borrar
//	ausente  + false -> nada
func (s *Service) applySurgery(ctx context.Context, tx Tx, cur *Record, had bool, typ *string, date *time.Time) error {
	switch {
	case had && cur.SurgeryID == nil:
		sg := Surgery{ID: s.newID(), Type: strings.TrimSpace(*typ), Date: date}
		if err := tx.InsertSurgery(ctx, sg); err != nil {
			return err
		}
		cur.SurgeryID = &sg.ID

	case had:
		sg, err := tx.GetSurgery(ctx, *cur.SurgeryID)
		if err != nil {
			return err
		}
		if t := trimmed(typ); t != nil {
			sg.Type = *t
		}
		if date != nil {
			sg.Date = date
		}
		if err := tx.UpdateSurgery(ctx, sg); err != nil {
			return err
		}

	case cur.SurgeryID != nil:
		id := *cur.SurgeryID
		if err := tx.DetachSurgery(ctx, cur.ID); err != nil {
			return err
		}
		if err := tx.DeleteSurgery(ctx, id); err != nil {
			return err
		}
		cur.SurgeryID = nil
	}
	return nil
}

func (s *Service) lookupOrCreateLab(ctx context.Context, tx Tx, description string) (string, error) {
	description = strings.TrimSpace(description)

	l, err := tx.FindLabByDescription(ctx, description)
	if err == nil {
		return l.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	l = Lab{ID: s.newID(), Description: description}
	if err := tx.InsertLab(ctx, l); err != nil {
		return "", err
	}
	return l.ID, nil
}

// serverErr deja pasar los errores de dominio y convierte el resto en
// ServerError genérico, logueando la causa.
func (s *Service) serverErr(err error, msg, recordID string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	s.log.Error(msg, map[string]any{"record_id": recordID, "err": err.Error()})
	return apperr.Server(msg, err)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(apperr.KindOf(err)))
}
