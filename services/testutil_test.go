package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/repositories"
)

// A stub driver whose connections only know how to begin, commit and roll
// back. Service transactions run against it while the fake repositories below
// ignore the executor entirely.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStubDriver sync.Once

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	registerStubDriver.Do(func() { sql.Register("stub", stubDriver{}) })
	db, err := sql.Open("stub", "")
	if err != nil {
		t.Fatalf("failed to open stub db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (f *fakeUserRepo) add(user *models.User) *models.User {
	if user.ID == 0 {
		user.ID = f.nextID
		f.nextID++
	} else if user.ID >= f.nextID {
		f.nextID = user.ID + 1
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.ReferralCode == user.ReferralCode {
			return repositories.ErrUserReferralCodeConflict
		}
		if user.GameHandle != nil && existing.GameHandle != nil &&
			strings.EqualFold(*existing.GameHandle, *user.GameHandle) {
			return repositories.ErrUserGameHandleConflict
		}
	}
	clone := *user
	f.add(&clone)
	user.ID = clone.ID
	user.CreatedAt = clone.CreatedAt
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) GetByReferralCode(_ context.Context, code string) (*models.User, error) {
	for _, user := range f.users {
		if user.ReferralCode == code {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) GetByGameHandle(_ context.Context, handle string) (*models.User, error) {
	for _, user := range f.users {
		if user.GameHandle != nil && strings.EqualFold(*user.GameHandle, handle) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	stored, ok := f.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Email = user.Email
	stored.GameHandle = user.GameHandle
	stored.AvatarKey = user.AvatarKey
	return nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id int, role models.UserRole) error {
	user, ok := f.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.Role = role
	return nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, *user)
	}
	return users, nil
}

func (f *fakeUserRepo) ListReferred(_ context.Context, referrerID int) ([]models.User, error) {
	users := make([]models.User, 0)
	for _, user := range f.users {
		if user.ReferredBy != nil && *user.ReferredBy == referrerID {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) CreditBalance(_ context.Context, _ repositories.SQLExecutor, userID int, amount int64) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.WalletBalance += amount
	return nil
}

func (f *fakeUserRepo) DebitBalance(_ context.Context, _ repositories.SQLExecutor, userID int, amount int64) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	if user.WalletBalance < amount {
		return repositories.ErrInsufficientBalance
	}
	user.WalletBalance -= amount
	return nil
}

func (f *fakeUserRepo) AwardReferralPoints(_ context.Context, userID int, points int) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.ReferralPoints += points
	return nil
}

func (f *fakeUserRepo) ZeroReferralPoints(_ context.Context, _ repositories.SQLExecutor, userID int, expected int) error {
	user, ok := f.users[userID]
	if !ok || user.ReferralPoints != expected {
		return repositories.ErrReferralPointsChanged
	}
	user.ReferralPoints = 0
	return nil
}

func (f *fakeUserRepo) AddStats(_ context.Context, _ repositories.SQLExecutor, userID int, wins, kills int, earnings int64) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.Wins += wins
	user.Kills += kills
	user.Earnings += earnings
	return nil
}

// fakeTransactionRepo is an in-memory TransactionRepository.
type fakeTransactionRepo struct {
	transactions map[int]*models.Transaction
	nextID       int
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[int]*models.Transaction), nextID: 1}
}

func (f *fakeTransactionRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Transaction) error {
	t.ID = f.nextID
	f.nextID++
	t.CreatedAt = time.Now()
	clone := *t
	f.transactions[t.ID] = &clone
	return nil
}

func (f *fakeTransactionRepo) GetByID(_ context.Context, id int) (*models.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTransactionRepo) ListByUser(_ context.Context, userID int) ([]models.Transaction, error) {
	list := make([]models.Transaction, 0)
	for _, t := range f.transactions {
		if t.UserID == userID {
			list = append(list, *t)
		}
	}
	return list, nil
}

func (f *fakeTransactionRepo) List(_ context.Context, filter repositories.TransactionFilter) ([]models.Transaction, error) {
	list := make([]models.Transaction, 0)
	for _, t := range f.transactions {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Kind != "" && t.Kind != filter.Kind {
			continue
		}
		list = append(list, *t)
	}
	return list, nil
}

func (f *fakeTransactionRepo) MarkCompleted(_ context.Context, _ repositories.SQLExecutor, id int, utr string, actorID int) error {
	t, ok := f.transactions[id]
	if !ok || t.Kind != models.TransactionDebit {
		return repositories.ErrTransactionNotFound
	}
	if t.Status != models.TransactionPending {
		return repositories.ErrTransactionDecided
	}
	now := time.Now()
	t.Status = models.TransactionCompleted
	t.UTR = &utr
	t.ActorID = &actorID
	t.DecidedAt = &now
	return nil
}

func (f *fakeTransactionRepo) MarkRejected(_ context.Context, _ repositories.SQLExecutor, id int, reason string, actorID int) (*models.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok || t.Kind != models.TransactionDebit {
		return nil, repositories.ErrTransactionNotFound
	}
	if t.Status != models.TransactionPending {
		return nil, repositories.ErrTransactionDecided
	}
	now := time.Now()
	t.Status = models.TransactionRejected
	t.RejectionReason = &reason
	t.ActorID = &actorID
	t.DecidedAt = &now
	clone := *t
	return &clone, nil
}

// fakeTeamRepo is an in-memory TeamRepository.
type fakeTeamRepo struct {
	teams      map[int]*models.Team
	members    map[int][]models.TeamMember
	nextID     int
	nextMember int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:      make(map[int]*models.Team),
		members:    make(map[int][]models.TeamMember),
		nextID:     1,
		nextMember: 1,
	}
}

func (f *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	for _, existing := range f.teams {
		if existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
		if existing.CaptainID == team.CaptainID && !existing.Terminated {
			return repositories.ErrTeamCaptainConflict
		}
	}
	team.ID = f.nextID
	f.nextID++
	team.CreatedAt = time.Now()
	clone := *team
	clone.Members = nil
	f.teams[team.ID] = &clone
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	clone := *team
	clone.Members = append([]models.TeamMember(nil), f.members[id]...)
	return &clone, nil
}

func (f *fakeTeamRepo) GetActiveByCaptain(_ context.Context, captainID int) (*models.Team, error) {
	for _, team := range f.teams {
		if team.CaptainID == captainID && !team.Terminated {
			clone := *team
			return &clone, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (f *fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	stored, ok := f.teams[team.ID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	for id, existing := range f.teams {
		if id != team.ID && existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	stored.Name = team.Name
	stored.GameID = team.GameID
	stored.LogoKey = team.LogoKey
	return nil
}

func (f *fakeTeamRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(f.teams, id)
	delete(f.members, id)
	return nil
}

func (f *fakeTeamRepo) List(_ context.Context) ([]models.Team, error) {
	teams := make([]models.Team, 0, len(f.teams))
	for _, team := range f.teams {
		teams = append(teams, *team)
	}
	return teams, nil
}

func (f *fakeTeamRepo) SetTerminated(_ context.Context, id int, terminated bool) error {
	team, ok := f.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.Terminated = terminated
	return nil
}

func (f *fakeTeamRepo) ListMembers(_ context.Context, teamID int) ([]models.TeamMember, error) {
	return append([]models.TeamMember(nil), f.members[teamID]...), nil
}

func (f *fakeTeamRepo) AddMember(_ context.Context, _ repositories.SQLExecutor, member *models.TeamMember) error {
	if len(f.members[member.TeamID]) >= models.MaxTeamMembers {
		return repositories.ErrTeamRosterFull
	}
	for _, existing := range f.members[member.TeamID] {
		if strings.EqualFold(existing.GameHandle, member.GameHandle) {
			return repositories.ErrTeamMemberHandleConflict
		}
	}
	member.ID = f.nextMember
	f.nextMember++
	member.CreatedAt = time.Now()
	f.members[member.TeamID] = append(f.members[member.TeamID], *member)
	return nil
}

func (f *fakeTeamRepo) RemoveMemberByUser(_ context.Context, teamID, userID int) error {
	members := f.members[teamID]
	for i, member := range members {
		if member.UserID != nil && *member.UserID == userID {
			f.members[teamID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTeamMemberNotFound
}

// fakeInvitationRepo is an in-memory InvitationRepository keyed by code.
type fakeInvitationRepo struct {
	invitations map[string]*models.TeamInvitation
	nextID      int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: make(map[string]*models.TeamInvitation), nextID: 1}
}

func (f *fakeInvitationRepo) Create(_ context.Context, inv *models.TeamInvitation) error {
	if _, ok := f.invitations[inv.Code]; ok {
		return repositories.ErrInvitationCodeConflict
	}
	inv.ID = f.nextID
	f.nextID++
	inv.CreatedAt = time.Now()
	clone := *inv
	f.invitations[inv.Code] = &clone
	return nil
}

func (f *fakeInvitationRepo) GetByCode(_ context.Context, code string) (*models.TeamInvitation, error) {
	inv, ok := f.invitations[code]
	if !ok {
		return nil, repositories.ErrInvitationNotFound
	}
	clone := *inv
	return &clone, nil
}

func (f *fakeInvitationRepo) Consume(_ context.Context, _ repositories.SQLExecutor, code string, status models.InvitationStatus) (*models.TeamInvitation, error) {
	inv, ok := f.invitations[code]
	if !ok || inv.Status != models.InvitationPending || time.Now().After(inv.ExpiresAt) {
		return nil, repositories.ErrInvitationConsumed
	}
	inv.Status = status
	clone := *inv
	return &clone, nil
}

func (f *fakeInvitationRepo) MarkExpired(_ context.Context, id int) error {
	for _, inv := range f.invitations {
		if inv.ID == id && inv.Status == models.InvitationPending {
			inv.Status = models.InvitationExpired
			return nil
		}
	}
	return repositories.ErrInvitationNotFound
}

func (f *fakeInvitationRepo) ListByTeam(_ context.Context, teamID int) ([]models.TeamInvitation, error) {
	list := make([]models.TeamInvitation, 0)
	for _, inv := range f.invitations {
		if inv.TeamID == teamID {
			list = append(list, *inv)
		}
	}
	return list, nil
}

// fakeTournamentRepo is an in-memory TournamentRepository.
type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (f *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	for _, existing := range f.tournaments {
		if existing.Title == t.Title {
			return repositories.ErrTournamentTitleConflict
		}
	}
	t.ID = f.nextID
	f.nextID++
	t.CreatedAt = time.Now()
	clone := *t
	f.tournaments[t.ID] = &clone
	return nil
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	if _, ok := f.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	clone := *t
	f.tournaments[t.ID] = &clone
	return nil
}

func (f *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.tournaments, id)
	return nil
}

func (f *fakeTournamentRepo) List(_ context.Context) ([]models.Tournament, error) {
	list := make([]models.Tournament, 0, len(f.tournaments))
	for _, t := range f.tournaments {
		list = append(list, *t)
	}
	return list, nil
}

func (f *fakeTournamentRepo) IncrementRegisteredTeams(_ context.Context, _ repositories.SQLExecutor, id int) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.RegisteredTeams >= t.MaxTeams {
		return repositories.ErrTournamentFull
	}
	t.RegisteredTeams++
	return nil
}

// fakeRegistrationRepo is an in-memory RegistrationRepository.
type fakeRegistrationRepo struct {
	registrations map[int]*models.TournamentRegistration
	nextID        int
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{registrations: make(map[int]*models.TournamentRegistration), nextID: 1}
}

func (f *fakeRegistrationRepo) Create(_ context.Context, reg *models.TournamentRegistration) error {
	for _, existing := range f.registrations {
		if existing.TournamentID == reg.TournamentID && existing.TeamID == reg.TeamID &&
			existing.Status != models.RegistrationRejected {
			return repositories.ErrRegistrationConflict
		}
	}
	reg.ID = f.nextID
	f.nextID++
	reg.CreatedAt = time.Now()
	clone := *reg
	f.registrations[reg.ID] = &clone
	return nil
}

func (f *fakeRegistrationRepo) GetByID(_ context.Context, id int) (*models.TournamentRegistration, error) {
	reg, ok := f.registrations[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	clone := *reg
	return &clone, nil
}

func (f *fakeRegistrationRepo) Approve(_ context.Context, _ repositories.SQLExecutor, id, actorID int) error {
	return f.decide(id, actorID, models.RegistrationApproved, nil)
}

func (f *fakeRegistrationRepo) Reject(_ context.Context, _ repositories.SQLExecutor, id, actorID int, reason string) error {
	return f.decide(id, actorID, models.RegistrationRejected, &reason)
}

func (f *fakeRegistrationRepo) decide(id, actorID int, status models.RegistrationStatus, reason *string) error {
	reg, ok := f.registrations[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	if reg.Status != models.RegistrationPending {
		return repositories.ErrRegistrationDecided
	}
	now := time.Now()
	reg.Status = status
	reg.Reason = reason
	reg.DecidedBy = &actorID
	reg.DecidedAt = &now
	return nil
}

func (f *fakeRegistrationRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.TournamentRegistration, error) {
	list := make([]models.TournamentRegistration, 0)
	for _, reg := range f.registrations {
		if reg.TournamentID == tournamentID {
			list = append(list, *reg)
		}
	}
	return list, nil
}

func (f *fakeRegistrationRepo) ListByTeam(_ context.Context, teamID int) ([]models.TournamentRegistration, error) {
	list := make([]models.TournamentRegistration, 0)
	for _, reg := range f.registrations {
		if reg.TeamID == teamID {
			list = append(list, *reg)
		}
	}
	return list, nil
}

// fakeGameRepo and fakeFormatRepo back the lookup tables.
type fakeGameRepo struct {
	games  map[int]*models.Game
	nextID int
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[int]*models.Game), nextID: 1}
}

func (f *fakeGameRepo) add(name string) *models.Game {
	game := &models.Game{ID: f.nextID, Name: name, CreatedAt: time.Now()}
	f.nextID++
	f.games[game.ID] = game
	return game
}

func (f *fakeGameRepo) Create(_ context.Context, game *models.Game) error {
	for _, existing := range f.games {
		if existing.Name == game.Name {
			return repositories.ErrGameNameConflict
		}
	}
	created := f.add(game.Name)
	game.ID = created.ID
	game.CreatedAt = created.CreatedAt
	return nil
}

func (f *fakeGameRepo) GetByID(_ context.Context, id int) (*models.Game, error) {
	game, ok := f.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	clone := *game
	return &clone, nil
}

func (f *fakeGameRepo) Update(_ context.Context, game *models.Game) error {
	stored, ok := f.games[game.ID]
	if !ok {
		return repositories.ErrGameNotFound
	}
	stored.Name = game.Name
	return nil
}

func (f *fakeGameRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.games[id]; !ok {
		return repositories.ErrGameNotFound
	}
	delete(f.games, id)
	return nil
}

func (f *fakeGameRepo) List(_ context.Context) ([]models.Game, error) {
	list := make([]models.Game, 0, len(f.games))
	for _, game := range f.games {
		list = append(list, *game)
	}
	return list, nil
}

type fakeFormatRepo struct {
	formats map[int]*models.Format
	nextID  int
}

func newFakeFormatRepo() *fakeFormatRepo {
	return &fakeFormatRepo{formats: make(map[int]*models.Format), nextID: 1}
}

func (f *fakeFormatRepo) Create(_ context.Context, format *models.Format) error {
	for _, existing := range f.formats {
		if existing.Kind == format.Kind && existing.Name == format.Name {
			return repositories.ErrFormatNameConflict
		}
	}
	format.ID = f.nextID
	f.nextID++
	format.CreatedAt = time.Now()
	clone := *format
	f.formats[format.ID] = &clone
	return nil
}

func (f *fakeFormatRepo) GetByID(_ context.Context, id int) (*models.Format, error) {
	format, ok := f.formats[id]
	if !ok {
		return nil, repositories.ErrFormatNotFound
	}
	clone := *format
	return &clone, nil
}

func (f *fakeFormatRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.formats[id]; !ok {
		return repositories.ErrFormatNotFound
	}
	delete(f.formats, id)
	return nil
}

func (f *fakeFormatRepo) ListByKind(_ context.Context, kind models.FormatKind) ([]models.Format, error) {
	list := make([]models.Format, 0)
	for _, format := range f.formats {
		if format.Kind == kind {
			list = append(list, *format)
		}
	}
	return list, nil
}

// fakeLeaderboardRepo is an in-memory LeaderboardRepository.
type fakeLeaderboardRepo struct {
	entries []models.LeaderboardEntry
	nextID  int
}

func newFakeLeaderboardRepo() *fakeLeaderboardRepo {
	return &fakeLeaderboardRepo{nextID: 1}
}

func (f *fakeLeaderboardRepo) Create(_ context.Context, _ repositories.SQLExecutor, entry *models.LeaderboardEntry) error {
	for _, existing := range f.entries {
		if existing.TournamentID == entry.TournamentID && existing.Rank == entry.Rank {
			return repositories.ErrLeaderboardRankConflict
		}
	}
	entry.ID = f.nextID
	f.nextID++
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLeaderboardRepo) ReplaceForTournament(ctx context.Context, tournamentID int, entries []*models.LeaderboardEntry) error {
	kept := f.entries[:0]
	for _, entry := range f.entries {
		if entry.TournamentID != tournamentID {
			kept = append(kept, entry)
		}
	}
	f.entries = kept
	for _, entry := range entries {
		entry.TournamentID = tournamentID
		if err := f.Create(ctx, nil, entry); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeLeaderboardRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.LeaderboardEntry, error) {
	list := make([]models.LeaderboardEntry, 0)
	for _, entry := range f.entries {
		if entry.TournamentID == tournamentID {
			list = append(list, entry)
		}
	}
	return list, nil
}

func (f *fakeLeaderboardRepo) AggregateTopTeams(_ context.Context, limit int) ([]models.TeamStanding, error) {
	type key struct {
		teamID int
		name   string
	}
	byTeam := make(map[key]*models.TeamStanding)
	order := make([]key, 0)

	for _, entry := range f.entries {
		k := key{name: entry.TeamName}
		if entry.TeamID != nil {
			k.teamID = *entry.TeamID
		}
		standing, ok := byTeam[k]
		if !ok {
			standing = &models.TeamStanding{TeamID: entry.TeamID, TeamName: entry.TeamName}
			byTeam[k] = standing
			order = append(order, k)
		}
		standing.Tournaments++
		standing.Kills += entry.Kills
		standing.Earnings += entry.Earnings
	}

	list := make([]models.TeamStanding, 0, len(order))
	for _, k := range order {
		list = append(list, *byTeam[k])
	}
	// Insertion sort by earnings desc, kills desc, name asc.
	for i := 1; i < len(list); i++ {
		for j := i; j > 0; j-- {
			a, b := list[j-1], list[j]
			if b.Earnings > a.Earnings ||
				(b.Earnings == a.Earnings && b.Kills > a.Kills) ||
				(b.Earnings == a.Earnings && b.Kills == a.Kills && b.TeamName < a.TeamName) {
				list[j-1], list[j] = b, a
			} else {
				break
			}
		}
	}
	if limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// fakeNotificationRepo is an in-memory NotificationRepository. It is mutex
// guarded because FanOut creates notifications concurrently.
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
	nextID        int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{nextID: 1}
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = f.nextID
	f.nextID++
	n.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]models.Notification, 0)
	for _, n := range f.notifications {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	return list, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].UserID == userID {
			f.notifications[i].Read = true
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].UserID == userID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func newTestNotificationService() NotificationService {
	return NewNotificationService(newFakeNotificationRepo(), nil)
}
