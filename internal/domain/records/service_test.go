package records

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/ports/session"
)

// -------------------------
// Test repo (in-memory, con rollback)
// -------------------------

type state struct {
	records   map[string]Record
	diagnoses map[string]Diagnosis
	surgeries map[string]Surgery
	labs      map[string]Lab
	matches   map[string]string // record_id -> lab_id
}

func (s state) clone() state {
	c := state{
		records:   map[string]Record{},
		diagnoses: map[string]Diagnosis{},
		surgeries: map[string]Surgery{},
		labs:      map[string]Lab{},
		matches:   map[string]string{},
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	for k, v := range s.diagnoses {
		c.diagnoses[k] = v
	}
	for k, v := range s.surgeries {
		c.surgeries[k] = v
	}
	for k, v := range s.labs {
		c.labs[k] = v
	}
	for k, v := range s.matches {
		c.matches[k] = v
	}
	return c
}

type testRepo struct {
	st    state
	calls []string
	// failOn hace fallar la operación con ese nombre dentro del tx.
	failOn     string
	hideDetail bool
}

func newTestRepo() *testRepo {
	return &testRepo{st: state{}.clone()}
}

var errInjected = errors.New("repo: injected failure")

func (r *testRepo) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx := &testTx{repo: r, st: r.st.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	r.st = tx.st
	return nil
}

func (r *testRepo) GetDetail(ctx context.Context, id string) (Detail, error) {
	return detailOf(r.st, id)
}

func (r *testRepo) ListByPet(ctx context.Context, petID string, f ListFilter) ([]Detail, error) {
	out := make([]Detail, 0)
	for id, rec := range r.st.records {
		if rec.PetID != petID {
			continue
		}
		d, _ := detailOf(r.st, id)
		out = append(out, d)
	}
	return out, nil
}

type testTx struct {
	repo *testRepo
	st   state
}

func (t *testTx) call(name string) error {
	t.repo.calls = append(t.repo.calls, name)
	if t.repo.failOn == name {
		return errInjected
	}
	return nil
}

func (t *testTx) GetRecord(ctx context.Context, id string) (Record, error) {
	if err := t.call("GetRecord"); err != nil {
		return Record{}, err
	}
	r, ok := t.st.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (t *testTx) InsertRecord(ctx context.Context, r Record) error {
	if err := t.call("InsertRecord"); err != nil {
		return err
	}
	t.st.records[r.ID] = r
	return nil
}

func (t *testTx) UpdateRecord(ctx context.Context, r Record) error {
	if err := t.call("UpdateRecord"); err != nil {
		return err
	}
	t.st.records[r.ID] = r
	return nil
}

func (t *testTx) InsertDiagnosis(ctx context.Context, d Diagnosis) error {
	if err := t.call("InsertDiagnosis"); err != nil {
		return err
	}
	t.st.diagnoses[d.ID] = d
	return nil
}

func (t *testTx) UpdateDiagnosisText(ctx context.Context, id, text string) error {
	if err := t.call("UpdateDiagnosisText"); err != nil {
		return err
	}
	t.st.diagnoses[id] = Diagnosis{ID: id, Text: text}
	return nil
}

func (t *testTx) GetSurgery(ctx context.Context, id string) (Surgery, error) {
	if err := t.call("GetSurgery"); err != nil {
		return Surgery{}, err
	}
	s, ok := t.st.surgeries[id]
	if !ok {
		return Surgery{}, ErrNotFound
	}
	return s, nil
}

func (t *testTx) InsertSurgery(ctx context.Context, s Surgery) error {
	if err := t.call("InsertSurgery"); err != nil {
		return err
	}
	t.st.surgeries[s.ID] = s
	return nil
}

func (t *testTx) UpdateSurgery(ctx context.Context, s Surgery) error {
	if err := t.call("UpdateSurgery"); err != nil {
		return err
	}
	t.st.surgeries[s.ID] = s
	return nil
}

func (t *testTx) DetachSurgery(ctx context.Context, recordID string) error {
	if err := t.call("DetachSurgery"); err != nil {
		return err
	}
	r := t.st.records[recordID]
	r.SurgeryID = nil
	t.st.records[recordID] = r
	return nil
}

func (t *testTx) DeleteSurgery(ctx context.Context, id string) error {
	if err := t.call("DeleteSurgery"); err != nil {
		return err
	}
	for _, r := range t.st.records {
		if r.SurgeryID != nil && *r.SurgeryID == id {
			return fmt.Errorf("fk violation: surgery %s still referenced", id)
		}
	}
	delete(t.st.surgeries, id)
	return nil
}

func (t *testTx) FindLabByDescription(ctx context.Context, description string) (Lab, error) {
	if err := t.call("FindLabByDescription"); err != nil {
		return Lab{}, err
	}
	for _, l := range t.st.labs {
		if l.Description == description {
			return l, nil
		}
	}
	return Lab{}, ErrNotFound
}

func (t *testTx) InsertLab(ctx context.Context, l Lab) error {
	if err := t.call("InsertLab"); err != nil {
		return err
	}
	t.st.labs[l.ID] = l
	return nil
}

func (t *testTx) LinkLab(ctx context.Context, recordID, labID string) error {
	if err := t.call("LinkLab"); err != nil {
		return err
	}
	t.st.matches[recordID] = labID
	return nil
}

func (t *testTx) GetDetail(ctx context.Context, id string) (Detail, error) {
	if err := t.call("GetDetail"); err != nil {
		return Detail{}, err
	}
	if t.repo.hideDetail {
		return Detail{}, ErrNotFound
	}
	return detailOf(t.st, id)
}

func detailOf(st state, id string) (Detail, error) {
	r, ok := st.records[id]
	if !ok {
		return Detail{}, ErrNotFound
	}
	d := Detail{Record: r, PetName: "Buddy"}
	if r.DiagnosisID != nil {
		txt := st.diagnoses[*r.DiagnosisID].Text
		d.DiagnosisText = &txt
	}
	if r.SurgeryID != nil {
		s := st.surgeries[*r.SurgeryID]
		d.SurgeryType = &s.Type
		d.SurgeryDate = s.Date
	}
	if r.LabID != nil {
		desc := st.labs[*r.LabID].Description
		d.LabDescription = &desc
	}
	return d, nil
}

type testPets map[string]string // petID -> owner

func (p testPets) OwnerOf(ctx context.Context, petID string) (string, error) {
	o, ok := p[petID]
	if !ok {
		return "", apperr.NotFound("Pet not found.")
	}
	return o, nil
}

// testGate replica la regla del gate real sin depender del paquete.
type testGate struct{}

func (testGate) Validate(sess *session.Session, code string) error {
	if sess == nil || sess.DiagnosisAccessCode == "" {
		return apperr.Forbidden("Access code not requested or expired.")
	}
	if sess.DiagnosisAccessCode != code {
		return apperr.Forbidden("Invalid access code.")
	}
	return nil
}

// -------------------------
// Helpers
// -------------------------

var (
	doctor    = auth.Claims{UserID: "doc-1", Role: auth.RoleDoctor}
	clinician = auth.Claims{UserID: "cli-1", Role: auth.RoleClinician}
	admin     = auth.Claims{UserID: "adm-1", Role: auth.RoleAdmin}
	owner     = auth.Claims{UserID: "owner-1", Role: auth.RoleOwner}
	stranger  = auth.Claims{UserID: "owner-2", Role: auth.RoleOwner}
)

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, testPets{"pet-1": owner.UserID}, testGate{}, Options{})
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc, repo
}

func sp(s string) *string { return &s }

func fp(f float64) *float64 { return &f }

func bp(b bool) *bool { return &b }

func dp(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func baseInput() CreateInput {
	return CreateInput{
		PetID:          "pet-1",
		Date:           dp(2024, 3, 15),
		Weight:         fp(10),
		Temperature:    fp(38.5),
		Condition:      sp("Good"),
		Symptom:        sp("None"),
		RecentVisit:    sp("No"),
		RecentPurchase: sp("Food"),
		Purpose:        sp("Checkup"),
	}
}

func mustCreate(t *testing.T, svc *Service, in CreateInput) Detail {
	t.Helper()
	d, err := svc.Create(context.Background(), doctor, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return d
}

func mustAppErr(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apperr.Error, got %v", err)
	}
	if ae.Kind != kind || ae.Message != msg {
		t.Fatalf("expected %s %q, got %s %q", kind, msg, ae.Kind, ae.Message)
	}
}

func called(calls []string, name string) bool {
	for _, c := range calls {
		if c == name {
			return true
		}
	}
	return false
}

// -------------------------
// Create
// -------------------------

func TestCreate_Basic(t *testing.T) {
	svc, repo := newTestService()

	d := mustCreate(t, svc, baseInput())
	if d.PetID != "pet-1" || d.Weight != 10 || d.Purpose != "Checkup" {
		t.Fatalf("unexpected detail: %+v", d)
	}
	if d.LabID != nil || d.DiagnosisID != nil || d.SurgeryID != nil || d.HadSurgery() {
		t.Fatalf("expected no sub-entities, got %+v", d)
	}
	if len(repo.st.records) != 1 {
		t.Fatalf("expected 1 record stored")
	}
}

func TestCreate_MissingRequiredField_NoInsert(t *testing.T) {
	svc, repo := newTestService()

	in := baseInput()
	in.Weight = nil

	_, err := svc.Create(context.Background(), doctor, in)
	mustAppErr(t, err, apperr.KindBadRequest, "Missing required fields.")
	if len(repo.calls) != 0 {
		t.Fatalf("expected no repo calls, got %v", repo.calls)
	}

	in = baseInput()
	in.Purpose = sp("   ")
	_, err = svc.Create(context.Background(), doctor, in)
	mustAppErr(t, err, apperr.KindBadRequest, "Missing required fields.")
}

func TestCreate_SurgeryDateWithoutType_NoInsert(t *testing.T) {
	svc, repo := newTestService()

	in := baseInput()
	in.SurgeryDate = dp(2024, 12, 20)

	_, err := svc.Create(context.Background(), doctor, in)
	mustAppErr(t, err, apperr.KindBadRequest, "Surgery type is required when a surgery date is given.")
	if len(repo.calls) != 0 {
		t.Fatalf("expected no repo calls, got %v", repo.calls)
	}

	in.SurgeryType = sp("  ")
	_, err = svc.Create(context.Background(), doctor, in)
	mustAppErr(t, err, apperr.KindBadRequest, "Surgery type is required when a surgery date is given.")
}

func TestCreate_ClinicianWithDiagnosis_Forbidden(t *testing.T) {
	svc, repo := newTestService()

	in := baseInput()
	in.DiagnosisText = sp("Attempted Diagnosis")

	_, err := svc.Create(context.Background(), clinician, in)
	mustAppErr(t, err, apperr.KindForbidden, "Clinicians cannot add a diagnosis when creating a record.")
	if len(repo.calls) != 0 {
		t.Fatalf("expected no repo calls")
	}

	// sin diagnóstico el clinician sí puede crear
	if _, err := svc.Create(context.Background(), clinician, baseInput()); err != nil {
		t.Fatalf("clinician create without diagnosis: %v", err)
	}
}

func TestCreate_OwnerForbidden(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), owner, baseInput())
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreate_UnknownPet(t *testing.T) {
	svc, _ := newTestService()

	in := baseInput()
	in.PetID = "missing"
	_, err := svc.Create(context.Background(), doctor, in)
	mustAppErr(t, err, apperr.KindNotFound, "Pet not found.")
}

func TestCreate_WithSubEntities(t *testing.T) {
	svc, repo := newTestService()

	in := baseInput()
	in.DiagnosisText = sp("Healthy")
	in.SurgeryType = sp("Spay")
	in.SurgeryDate = dp(2024, 3, 16)
	in.LabFile = sp("lab_report.pdf")

	d := mustCreate(t, svc, in)
	if d.DiagnosisText == nil || *d.DiagnosisText != "Healthy" {
		t.Fatalf("expected diagnosis, got %+v", d.DiagnosisText)
	}
	if !d.HadSurgery() || *d.SurgeryType != "Spay" || !d.SurgeryDate.Equal(*dp(2024, 3, 16)) {
		t.Fatalf("expected surgery, got %+v", d)
	}
	if d.LabFile == nil || *d.LabFile != "lab_report.pdf" {
		t.Fatalf("expected lab file reference")
	}
	if len(repo.st.diagnoses) != 1 || len(repo.st.surgeries) != 1 {
		t.Fatalf("expected one diagnosis and one surgery row")
	}
}

func TestCreate_LabLookupOrCreate_Idempotent(t *testing.T) {
	svc, repo := newTestService()

	in := baseInput()
	in.LabDescription = sp("Blood Test")

	first := mustCreate(t, svc, in)
	if len(repo.st.labs) != 1 {
		t.Fatalf("expected 1 lab row, got %d", len(repo.st.labs))
	}
	if first.LabID == nil || repo.st.matches[first.ID] != *first.LabID {
		t.Fatalf("expected record linked to lab via match row")
	}

	second := mustCreate(t, svc, in)
	if len(repo.st.labs) != 1 {
		t.Fatalf("expected lab reused, got %d rows", len(repo.st.labs))
	}
	if *second.LabID != *first.LabID {
		t.Fatalf("expected same lab id, got %s vs %s", *second.LabID, *first.LabID)
	}
	if *second.LabDescription != "Blood Test" {
		t.Fatalf("expected lab description in detail")
	}
}

func TestCreate_RereadEmpty_NotFound_RollsBack(t *testing.T) {
	svc, repo := newTestService()
	repo.hideDetail = true

	_, err := svc.Create(context.Background(), doctor, baseInput())
	mustAppErr(t, err, apperr.KindNotFound, "Failed to retrieve the newly created record.")
	if len(repo.st.records) != 0 {
		t.Fatalf("expected rollback")
	}
}

func TestCreate_PersistenceFailure_ServerError(t *testing.T) {
	svc, repo := newTestService()
	repo.failOn = "InsertRecord"

	in := baseInput()
	in.DiagnosisText = sp("Healthy")

	_, err := svc.Create(context.Background(), doctor, in)
	mustAppErr(t, err, apperr.KindServer, "Server error while adding medical record.")
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected cause kept for logs")
	}
	if len(repo.st.diagnoses) != 0 {
		t.Fatalf("expected diagnosis insert rolled back")
	}
}

// -------------------------
// Update
// -------------------------

func TestUpdate_RecordNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), "rec789", doctor, nil, Patch{})
	mustAppErr(t, err, apperr.KindNotFound, "Record not found.")
}

func TestUpdate_PartialMerge(t *testing.T) {
	svc, _ := newTestService()
	created := mustCreate(t, svc, baseInput())

	d, err := svc.Update(context.Background(), created.ID, doctor, nil, Patch{
		Weight:  fp(11.2),
		Symptom: sp("Cough"),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Weight != 11.2 || d.Symptom != "Cough" {
		t.Fatalf("expected patched fields, got %+v", d)
	}
	if d.Condition != "Good" || d.Purpose != "Checkup" || d.Temperature != 38.5 {
		t.Fatalf("expected untouched fields kept, got %+v", d)
	}
}

func TestUpdate_Doctor_InsertsThenEditsDiagnosisInPlace(t *testing.T) {
	svc, repo := newTestService()
	created := mustCreate(t, svc, baseInput())

	d, err := svc.Update(context.Background(), created.ID, doctor, nil, Patch{DiagnosisText: sp("New Diagnosis")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.DiagnosisID == nil || *d.DiagnosisText != "New Diagnosis" {
		t.Fatalf("expected diagnosis linked, got %+v", d)
	}
	diagID := *d.DiagnosisID

	repo.calls = nil
	d, err = svc.Update(context.Background(), created.ID, doctor, nil, Patch{DiagnosisText: sp("Updated Diagnosis")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if *d.DiagnosisID != diagID || *d.DiagnosisText != "Updated Diagnosis" {
		t.Fatalf("expected in-place update, got %+v", d)
	}
	if called(repo.calls, "InsertDiagnosis") {
		t.Fatalf("expected no new diagnosis row")
	}
	if len(repo.st.diagnoses) != 1 {
		t.Fatalf("expected 1 diagnosis row, got %d", len(repo.st.diagnoses))
	}
}

func TestUpdate_Clinician_NoCodeIssued_Forbidden_NoWrites(t *testing.T) {
	svc, repo := newTestService()
	created := mustCreate(t, svc, baseInput())
	repo.calls = nil

	sess := &session.Session{ID: "s1"}
	_, err := svc.Update(context.Background(), created.ID, clinician, sess, Patch{
		DiagnosisText: sp("Test"),
		AccessCode:    "ANYCODE",
	})
	mustAppErr(t, err, apperr.KindForbidden, "Access code not requested or expired.")

	for _, c := range repo.calls {
		if c != "GetRecord" {
			t.Fatalf("expected only reads, got %v", repo.calls)
		}
	}
	if len(repo.st.diagnoses) != 0 {
		t.Fatalf("expected no diagnosis write")
	}
}

func TestUpdate_Clinician_NilSession_Forbidden(t *testing.T) {
	svc, _ := newTestService()
	created := mustCreate(t, svc, baseInput())

	_, err := svc.Update(context.Background(), created.ID, clinician, nil, Patch{DiagnosisText: sp("Test")})
	mustAppErr(t, err, apperr.KindForbidden, "Access code not requested or expired.")
}

func TestUpdate_Clinician_WrongCode_Forbidden(t *testing.T) {
	svc, repo := newTestService()
	created := mustCreate(t, svc, baseInput())

	sess := &session.Session{ID: "s1", DiagnosisAccessCode: "VALIDCODE"}
	_, err := svc.Update(context.Background(), created.ID, clinician, sess, Patch{
		DiagnosisText: sp("Test"),
		AccessCode:    "INVALIDCODE",
	})
	mustAppErr(t, err, apperr.KindForbidden, "Invalid access code.")
	if len(repo.st.diagnoses) != 0 {
		t.Fatalf("expected no diagnosis write")
	}
}

func TestUpdate_Clinician_ValidCode(t *testing.T) {
	svc, _ := newTestService()
	created := mustCreate(t, svc, baseInput())

	sess := &session.Session{ID: "s1", DiagnosisAccessCode: "VALIDCODE"}
	d, err := svc.Update(context.Background(), created.ID, clinician, sess, Patch{
		DiagnosisText: sp("Clinician Added Diagnosis"),
		AccessCode:    "VALIDCODE",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if *d.DiagnosisText != "Clinician Added Diagnosis" {
		t.Fatalf("expected diagnosis set")
	}
}

func TestUpdate_DiagnosisRoles(t *testing.T) {
	svc, _ := newTestService()
	created := mustCreate(t, svc, baseInput())

	_, err := svc.Update(context.Background(), created.ID, admin, nil, Patch{DiagnosisText: sp("x")})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("admin diagnosis: expected forbidden, got %v", err)
	}

	_, err = svc.Update(context.Background(), created.ID, owner, nil, Patch{Weight: fp(1)})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("owner update: expected forbidden, got %v", err)
	}

	unknown := auth.Claims{UserID: "x", Role: auth.Role("vet-tech")}
	_, err = svc.Update(context.Background(), created.ID, unknown, nil, Patch{DiagnosisText: sp("x")})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("unknown role: expected forbidden, got %v", err)
	}

	// admin puede editar el resto de los campos
	if _, err := svc.Update(context.Background(), created.ID, admin, nil, Patch{Weight: fp(12)}); err != nil {
		t.Fatalf("admin non-diagnosis update: %v", err)
	}
}

func TestUpdate_SurgeryStateMachine(t *testing.T) {
	svc, repo := newTestService()
	created := mustCreate(t, svc, baseInput())
	ctx := context.Background()

	// ausente + false: no-op
	repo.calls = nil
	d, err := svc.Update(ctx, created.ID, doctor, nil, Patch{HadSurgery: bp(false)})
	if err != nil || d.HadSurgery() {
		t.Fatalf("absent+false: err=%v had=%v", err, d.HadSurgery())
	}
	if called(repo.calls, "DetachSurgery") || called(repo.calls, "DeleteSurgery") {
		t.Fatalf("absent+false must not touch surgery rows: %v", repo.calls)
	}

	// ausente + true sin tipo: bad request
	_, err = svc.Update(ctx, created.ID, doctor, nil, Patch{HadSurgery: bp(true)})
	if apperr.KindOf(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request without surgery type, got %v", err)
	}

	// ausente + true: crear
	d, err = svc.Update(ctx, created.ID, doctor, nil, Patch{
		HadSurgery: bp(true), SurgeryType: sp("Neuter"), SurgeryDate: dp(2024, 3, 20),
	})
	if err != nil || !d.HadSurgery() || *d.SurgeryType != "Neuter" {
		t.Fatalf("absent+true: err=%v detail=%+v", err, d)
	}
	surgeryID := *d.SurgeryID

	// presente + true: actualizar en lugar
	d, err = svc.Update(ctx, created.ID, doctor, nil, Patch{
		HadSurgery: bp(true), SurgeryType: sp("Neuter Updated"),
	})
	if err != nil || *d.SurgeryID != surgeryID || *d.SurgeryType != "Neuter Updated" {
		t.Fatalf("attached+true: err=%v detail=%+v", err, d)
	}
	if !d.SurgeryDate.Equal(*dp(2024, 3, 20)) {
		t.Fatalf("expected surgery date kept when not sent")
	}
	if len(repo.st.surgeries) != 1 {
		t.Fatalf("expected 1 surgery row, got %d", len(repo.st.surgeries))
	}
}

func TestUpdate_HadSurgeryFalse_DetachesThenDeletes(t *testing.T) {
	svc, repo := newTestService()

	in := baseInput()
	in.SurgeryType = sp("Spay")
	created := mustCreate(t, svc, in)
	surgeryID := *created.SurgeryID

	repo.calls = nil
	d, err := svc.Update(context.Background(), created.ID, doctor, nil, Patch{HadSurgery: bp(false)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.HadSurgery() || d.SurgeryID != nil || d.SurgeryType != nil || d.SurgeryDate != nil {
		t.Fatalf("expected no surgery fields, got %+v", d)
	}
	if _, ok := repo.st.surgeries[surgeryID]; ok {
		t.Fatalf("expected surgery row deleted")
	}

	detach, del := -1, -1
	for i, c := range repo.calls {
		switch c {
		case "DetachSurgery":
			detach = i
		case "DeleteSurgery":
			del = i
		}
	}
	if detach < 0 || del < 0 || detach > del {
		t.Fatalf("expected detach before delete, got %v", repo.calls)
	}
}

func TestUpdate_LabDescription(t *testing.T) {
	svc, repo := newTestService()
	created := mustCreate(t, svc, baseInput())

	_, err := svc.Update(context.Background(), created.ID, doctor, nil, Patch{LabDescription: sp("  ")})
	mustAppErr(t, err, apperr.KindBadRequest, "Invalid lab description.")

	d, err := svc.Update(context.Background(), created.ID, doctor, nil, Patch{LabDescription: sp("X-Ray")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.LabDescription == nil || *d.LabDescription != "X-Ray" {
		t.Fatalf("expected lab linked, got %+v", d)
	}
	if repo.st.matches[created.ID] != *d.LabID {
		t.Fatalf("expected match row for record")
	}

	// cambio de lab: actualiza la fila de match
	d, err = svc.Update(context.Background(), created.ID, doctor, nil, Patch{LabDescription: sp("Urinalysis")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if repo.st.matches[created.ID] != *d.LabID || len(repo.st.matches) != 1 {
		t.Fatalf("expected single match row updated, got %v", repo.st.matches)
	}
}

func TestUpdate_LabFileReplaced(t *testing.T) {
	svc, _ := newTestService()
	in := baseInput()
	in.LabFile = sp("old.pdf")
	created := mustCreate(t, svc, in)

	d, err := svc.Update(context.Background(), created.ID, doctor, nil, Patch{LabFile: sp("new.pdf")})
	if err != nil || d.LabFile == nil || *d.LabFile != "new.pdf" {
		t.Fatalf("expected lab file replaced, err=%v", err)
	}
}

func TestUpdate_FailureMidway_RollsBackEverything(t *testing.T) {
	svc, repo := newTestService()

	in := baseInput()
	in.SurgeryType = sp("Spay")
	created := mustCreate(t, svc, in)
	before := repo.st.clone()

	repo.failOn = "UpdateRecord"
	_, err := svc.Update(context.Background(), created.ID, doctor, nil, Patch{
		DiagnosisText:  sp("Late"),
		HadSurgery:     bp(false),
		LabDescription: sp("Blood Test"),
		Weight:         fp(99),
	})
	mustAppErr(t, err, apperr.KindServer, "Server error while updating medical record.")

	if len(repo.st.diagnoses) != len(before.diagnoses) || len(repo.st.labs) != 0 || len(repo.st.matches) != 0 {
		t.Fatalf("expected sub-entity writes rolled back")
	}
	if _, ok := repo.st.surgeries[*created.SurgeryID]; !ok {
		t.Fatalf("expected surgery row restored")
	}
	if rec := repo.st.records[created.ID]; rec.SurgeryID == nil || rec.Weight != 10 {
		t.Fatalf("expected record untouched, got %+v", rec)
	}
}

// -------------------------
// Queries
// -------------------------

func TestGetDetail_Access(t *testing.T) {
	svc, _ := newTestService()
	created := mustCreate(t, svc, baseInput())

	if _, err := svc.GetDetail(context.Background(), created.ID, owner); err != nil {
		t.Fatalf("owner should read own pet record: %v", err)
	}
	if _, err := svc.GetDetail(context.Background(), created.ID, clinician); err != nil {
		t.Fatalf("staff should read record: %v", err)
	}

	_, err := svc.GetDetail(context.Background(), created.ID, stranger)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = svc.GetDetail(context.Background(), "missing", doctor)
	mustAppErr(t, err, apperr.KindNotFound, "Record not found.")
}

func TestListByPet_Validation(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, baseInput())

	_, err := svc.ListByPet(context.Background(), "", doctor, ListFilter{})
	mustAppErr(t, err, apperr.KindBadRequest, "pet_id is required")

	_, err = svc.ListByPet(context.Background(), "pet-1", doctor, ListFilter{From: dp(2024, 5, 1), To: dp(2024, 1, 1)})
	if apperr.KindOf(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request for inverted range, got %v", err)
	}

	items, err := svc.ListByPet(context.Background(), "pet-1", owner, ListFilter{})
	if err != nil || len(items) != 1 {
		t.Fatalf("expected 1 record, err=%v n=%d", err, len(items))
	}

	_, err = svc.ListByPet(context.Background(), "pet-1", stranger, ListFilter{})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

var _ PetDirectory = (*pets.Service)(nil)
