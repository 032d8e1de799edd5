package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type SFTPCredentials struct {
	Username    string
	Password    string
	HostAddress string
	RemoteDir   string
}

func sftpCredentialsFromSettings(ci CompanyIntegration) (SFTPCredentials, error) {
	creds := SFTPCredentials{
		Username:    getCIStringSetting(ci, "sftp_username"),
		Password:    getCIStringSetting(ci, "sftp_password"),
		HostAddress: getCIStringSetting(ci, "sftp_host"),
		RemoteDir:   getCIStringSetting(ci, "sftp_remote_dir"),
	}

	if creds.Username == "" || creds.Password == "" || creds.HostAddress == "" {
		return creds, errors.New("sftp drop is not configured for this integration")
	}

	if creds.RemoteDir == "" {
		creds.RemoteDir = "/"
	}

	return creds, nil
}

// fetchBulkFileSFTP downloads the newest csv from the company's drop
// directory into a temp file and hands back the local path.
func fetchBulkFileSFTP(ci CompanyIntegration) (string, error) {
	creds, err := sftpCredentialsFromSettings(ci)
	if err != nil {
		return "", err
	}

	sshClient, sftpClient, err := connectSFTP(creds)
	if err != nil {
		return "", errors.New("connectSFTP err: " + err.Error())
	}
	defer sshClient.Close()
	defer sftpClient.Close()

	entries, err := sftpClient.ReadDir(creds.RemoteDir)
	if err != nil {
		return "", errors.New("sftp ReadDir err: " + err.Error())
	}

	newest := ""
	var newestMod int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			continue
		}
		if mod := entry.ModTime().Unix(); newest == "" || mod > newestMod {
			newest = entry.Name()
			newestMod = mod
		}
	}

	if newest == "" {
		return "", errors.New("no csv files in the sftp drop")
	}

	remote, err := sftpClient.Open(path.Join(creds.RemoteDir, newest))
	if err != nil {
		return "", errors.New("sftp Open err: " + err.Error())
	}
	defer remote.Close()

	local, err := os.CreateTemp("", "opdir-bulk-*.csv")
	if err != nil {
		return "", err
	}
	defer local.Close()

	if _, err := io.Copy(local, remote); err != nil {
		return "", errors.New("sftp download err: " + err.Error())
	}

	InfoLog.Println("fetched bulk input ", newest, " from sftp drop to ", local.Name())

	return local.Name(), nil
}

func connectSFTP(creds SFTPCredentials) (*ssh.Client, *sftp.Client, error) {
	addr, err := net.LookupIP(creds.HostAddress)
	if err != nil {
		return nil, nil, errors.New("LookupIP err!: " + err.Error())
	}

	if len(addr) < 1 {
		return nil, nil, errors.New(fmt.Sprint("ip address was < 1: ", addr))
	}

	host := addr[0].String()

	// TODO: pin host keys once the drops are registered with known hosts
	config := &ssh.ClientConfig{
		User: creds.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(creds.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	conn, err := ssh.Dial("tcp", host+":22", config)
	if err != nil {
		return nil, nil, err
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		return nil, nil, err
	}

	return conn, client, nil
}
